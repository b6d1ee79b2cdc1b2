package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"", StatusAvailable, false},
		{"available", StatusAvailable, false},
		{"in_use", StatusInUse, false},
		{"repair", StatusRepair, false},
		{"retired", StatusRetired, false},
		{"lost", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArticle_Retire(t *testing.T) {
	a := &Article{Status: StatusInUse}
	assert.False(t, a.IsRetired())

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a.Retire(at)
	assert.True(t, a.IsRetired())
	require.NotNil(t, a.RetiredAt)
	assert.Equal(t, at, *a.RetiredAt)
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "Acme Rocket", (&ArticleModel{Name: "Rocket", Brand: "Acme"}).String())
	assert.Equal(t, "Rocket", (&ArticleModel{Name: "Rocket"}).String())
	assert.Equal(t, "IT Information Technology", (&Department{Code: "IT", Name: "Information Technology"}).String())
}
