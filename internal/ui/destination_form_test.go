package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlist/internal/destinations"
	"wanderlist/internal/model"
	"wanderlist/internal/tips"
)

func newTestForm(t *testing.T) (*DestinationFormModel, *destinations.Service) {
	t.Helper()
	svc := destinations.NewService(context.Background(), &memStore{items: sampleDestinations()}, nil)
	return NewDestinationFormModel(svc, tips.NewProvider(nil, nil), DefaultFormKeyMap()), svc
}

func TestForm_RequiresName(t *testing.T) {
	form, _ := newTestForm(t)

	msg := form.save()()
	errMsg, ok := msg.(model.ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, errMsg.Err.Error(), "name is required")
}

func TestForm_RejectsBadRating(t *testing.T) {
	form, _ := newTestForm(t)
	form.inputs[fieldName].SetValue("Oslo")
	form.inputs[fieldRating].SetValue("9")

	_, ok := form.save()().(model.ErrorMsg)
	assert.True(t, ok)
}

func TestForm_CategoryCycles(t *testing.T) {
	form, _ := newTestForm(t)
	next, _ := form.Update(keyPress("tab"))
	form = &next
	require.Equal(t, fieldCategory, form.focused)

	next, _ = form.Update(keyPress("l"))
	assert.Equal(t, model.CategoryNorthAmerica, next.category)

	form.category = "City"
	form.cycleCategory(1)
	assert.Equal(t, model.Categories()[0], form.category)
}

func TestForm_EditKeepsImageUnlessChanged(t *testing.T) {
	form, svc := newTestForm(t)
	d := sampleDestinations()[0]
	d.ImageBase64 = "data:image/png;base64,AAAA"
	form.LoadDestination(d)

	v, err := form.values()
	require.NoError(t, err)
	p := form.patch(v)
	assert.Nil(t, p.ImageBase64)
	assert.Nil(t, p.ImageURL, "unchanged URL leaves the stored image alone")

	form.inputs[fieldImageURL].SetValue("https://example.com/p.jpg")
	v, err = form.values()
	require.NoError(t, err)
	p = form.patch(v)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, "https://example.com/p.jpg", *p.ImageURL)

	msg, ok := form.save()().(model.DestinationSavedMsg)
	require.True(t, ok)
	assert.Equal(t, "update", msg.Operation)
	require.NotNil(t, msg.Before)
	assert.Equal(t, "https://example.com/p.jpg", msg.After.ImageURL)

	stored, _ := svc.GetByID("paris")
	assert.Equal(t, "https://example.com/p.jpg", stored.ImageURL)
}

func TestForm_GenerateTipsNeedsName(t *testing.T) {
	form, _ := newTestForm(t)

	assert.Nil(t, form.generateTips())
	assert.NotEmpty(t, form.error)

	form.inputs[fieldName].SetValue("Kyoto")
	assert.NotNil(t, form.generateTips())
	assert.True(t, form.generating)

	next, _ := form.Update(model.TipsLoadedMsg{Seq: form.tipSeq, Place: "Kyoto", Type: "facts", Text: "Fushimi Inari"})
	assert.False(t, next.generating)
	assert.Equal(t, "Fushimi Inari", next.aiTips.Value())
}
