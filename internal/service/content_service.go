package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
)

const maxHashtags = 10

type ContentService interface {
	GenerateVariations(ctx context.Context, userID int64, req *transfer.ContentRequest) ([]*transfer.ContentVariation, error)
	GenerateHashtags(ctx context.Context, content, targetAudience, productName string) ([]string, error)
	ImproveContent(ctx context.Context, req *transfer.ImproveRequest) (string, error)
}

type contentService struct {
	gen      Generator
	products repository.ProductRepository
}

func NewContentService(gen Generator, products repository.ProductRepository) ContentService {
	return &contentService{gen: gen, products: products}
}

// GenerateVariations produces up to req.Count tweet drafts, each with its
// own hashtag set. A variation that fails to generate is skipped so the
// rest still come back.
func (s *contentService) GenerateVariations(ctx context.Context, userID int64, req *transfer.ContentRequest) ([]*transfer.ContentVariation, error) {
	var product *models.Product
	if req.ProductID > 0 {
		owned, err := s.products.CheckByUserID(ctx, req.ProductID, userID)
		if err != nil {
			return nil, err
		}
		if owned {
			product, err = s.products.GetByID(ctx, req.ProductID)
			if err != nil {
				return nil, err
			}
		}
	}

	count := req.Count
	if count <= 0 || count > 5 {
		count = 3
	}

	basePrompt := buildContentPrompt(req, product)

	variations := make([]*transfer.ContentVariation, 0, count)
	for i := 1; i <= count; i++ {
		prompt := fmt.Sprintf("%s\n\nCreate variation %d with a different approach and tone while maintaining the core message.", basePrompt, i)

		content, err := s.gen.Generate(ctx, prompt)
		if err != nil {
			slog.Info("variation generation failed", "variation", i, "error", err)
			continue
		}
		content = strings.TrimSpace(content)

		targetAudience := req.TargetAudience
		productName := ""
		if product != nil {
			if targetAudience == "" {
				targetAudience = product.TargetAudience
			}
			productName = product.Name
		}

		hashtags, err := s.GenerateHashtags(ctx, content, targetAudience, productName)
		if err != nil {
			hashtags = nil
		}

		variations = append(variations, &transfer.ContentVariation{
			Content:         content,
			VariationNumber: i,
			Hashtags:        hashtags,
		})
	}

	if len(variations) == 0 {
		return nil, fmt.Errorf("content generation produced no variations")
	}
	return variations, nil
}

func (s *contentService) GenerateHashtags(ctx context.Context, content, targetAudience, productName string) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate 5-10 relevant hashtags for this social media content:\n%q\n", content)
	if targetAudience != "" {
		fmt.Fprintf(&b, "\nTarget audience: %s", targetAudience)
	}
	if productName != "" {
		fmt.Fprintf(&b, "\nProduct/Brand: %s", productName)
	}
	b.WriteString("\n\nReturn only the hashtags separated by commas, without the # symbol.\n")
	b.WriteString("Focus on popular, relevant hashtags that will help with discoverability.")

	result, err := s.gen.Generate(ctx, b.String())
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var hashtags []string
	for _, tag := range strings.Split(result, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		hashtags = append(hashtags, tag)
		if len(hashtags) == maxHashtags {
			break
		}
	}
	return hashtags, nil
}

// ImproveContent rewrites a draft for engagement. On generation failure the
// original content comes back unchanged.
func (s *contentService) ImproveContent(ctx context.Context, req *transfer.ImproveRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Improve this social media content while keeping it concise and engaging:\n%q\n", req.Content)
	if req.BrandVoice != "" {
		fmt.Fprintf(&b, "\nBrand voice: %s", req.BrandVoice)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "\nTarget audience: %s", req.TargetAudience)
	}
	b.WriteString(`

Requirements:
- Keep it under 280 characters for Twitter
- Make it more engaging and compelling
- Maintain the original message
- Use appropriate tone for the target audience
- Include a call-to-action if appropriate

Return only the improved content without additional commentary.`)

	improved, err := s.gen.Generate(ctx, b.String())
	if err != nil {
		slog.Info(err.Error())
		return req.Content, nil
	}
	return strings.TrimSpace(improved), nil
}

func buildContentPrompt(req *transfer.ContentRequest, product *models.Product) string {
	var b strings.Builder
	b.WriteString("Create engaging social media content for Twitter")

	if product != nil {
		fmt.Fprintf(&b, "\n\nProduct Information:\n- Name: %s\n- Description: %s\n- Target Audience: %s\n- Brand Voice: %s",
			product.Name, orDefault(product.Description, "N/A"),
			orDefault(product.TargetAudience, "General audience"),
			orDefault(product.BrandVoice, "Professional and friendly"))
	}

	if req.Prompt != "" {
		fmt.Fprintf(&b, "\n\nSpecific Request: %s", req.Prompt)
	}
	if req.BrandVoice != "" {
		fmt.Fprintf(&b, "\n\nBrand Voice Override: %s", req.BrandVoice)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "\n\nTarget Audience Override: %s", req.TargetAudience)
	}

	b.WriteString(`

Requirements:
- Keep it under 280 characters for Twitter
- Make it engaging and compelling
- Include relevant emojis if appropriate
- Create content that encourages engagement (likes, retweets, replies)
- Avoid generic marketing speak
- Be authentic and valuable to the audience
- Include a subtle call-to-action when appropriate
- Don't include hashtags in the main content (they will be generated separately)

Return only the social media content without any additional commentary or formatting.`)

	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
