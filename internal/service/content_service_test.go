package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
)

type fakeGenerator struct {
	fn    func(prompt string) (string, error)
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.fn(prompt)
}

type fakeProductRepo struct {
	repository.ProductRepository

	product *models.Product
}

func (f *fakeProductRepo) CheckByUserID(ctx context.Context, productID, userID int64) (bool, error) {
	return f.product != nil && f.product.ID == productID && f.product.UserID == userID, nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if f.product != nil && f.product.ID == id {
		return f.product, nil
	}
	return nil, nil
}

func TestGenerateVariations(t *testing.T) {
	gen := &fakeGenerator{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "hashtags") {
			return "marketing, startup, GrowthHacking", nil
		}
		return "  Check out what we just shipped!  ", nil
	}}
	s := NewContentService(gen, &fakeProductRepo{})

	variations, err := s.GenerateVariations(context.Background(), 1, &transfer.ContentRequest{
		Prompt: "announce the new release",
		Count:  2,
	})
	require.NoError(t, err)
	require.Len(t, variations, 2)

	assert.Equal(t, "Check out what we just shipped!", variations[0].Content)
	assert.Equal(t, 1, variations[0].VariationNumber)
	assert.Equal(t, 2, variations[1].VariationNumber)
	assert.Equal(t, []string{"marketing", "startup", "GrowthHacking"}, variations[0].Hashtags)
}

func TestGenerateVariationsUsesProductContext(t *testing.T) {
	var sawProduct bool
	gen := &fakeGenerator{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Acme Widgets") {
			sawProduct = true
		}
		return "content", nil
	}}
	products := &fakeProductRepo{product: &models.Product{
		ID:             5,
		UserID:         1,
		Name:           "Acme Widgets",
		TargetAudience: "makers",
	}}
	s := NewContentService(gen, products)

	_, err := s.GenerateVariations(context.Background(), 1, &transfer.ContentRequest{
		ProductID: 5,
		Count:     1,
	})
	require.NoError(t, err)
	assert.True(t, sawProduct)
}

func TestGenerateVariationsSkipsFailedOnes(t *testing.T) {
	calls := 0
	gen := &fakeGenerator{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "hashtags") {
			return "a, b", nil
		}
		calls++
		if calls == 2 {
			return "", errors.New("model overloaded")
		}
		return "content", nil
	}}
	s := NewContentService(gen, &fakeProductRepo{})

	variations, err := s.GenerateVariations(context.Background(), 1, &transfer.ContentRequest{Count: 3})
	require.NoError(t, err)
	assert.Len(t, variations, 2)
}

func TestGenerateVariationsAllFail(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) {
		return "", errors.New("model overloaded")
	}}
	s := NewContentService(gen, &fakeProductRepo{})

	_, err := s.GenerateVariations(context.Background(), 1, &transfer.ContentRequest{Count: 3})
	assert.Error(t, err)
}

func TestGenerateHashtagsParsing(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) {
		return "#one, two , , #three, four, five, six, seven, eight, nine, ten, eleven", nil
	}}
	s := NewContentService(gen, &fakeProductRepo{})

	hashtags, err := s.GenerateHashtags(context.Background(), "some content", "", "")
	require.NoError(t, err)

	assert.Len(t, hashtags, 10)
	assert.Equal(t, "one", hashtags[0])
	assert.Equal(t, "two", hashtags[1])
	assert.Equal(t, "three", hashtags[2])
	assert.NotContains(t, hashtags, "eleven")
}

func TestImproveContentFallsBackToOriginal(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (string, error) {
		return "", errors.New("model overloaded")
	}}
	s := NewContentService(gen, &fakeProductRepo{})

	improved, err := s.ImproveContent(context.Background(), &transfer.ImproveRequest{Content: "original text"})
	require.NoError(t, err)
	assert.Equal(t, "original text", improved)
}

func TestImproveContent(t *testing.T) {
	gen := &fakeGenerator{fn: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "original text")
		assert.Contains(t, prompt, "playful")
		return "improved text\n", nil
	}}
	s := NewContentService(gen, &fakeProductRepo{})

	improved, err := s.ImproveContent(context.Background(), &transfer.ImproveRequest{
		Content:    "original text",
		BrandVoice: "playful",
	})
	require.NoError(t, err)
	assert.Equal(t, "improved text", improved)
}
