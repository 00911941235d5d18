package validation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestiongastos/backend/internal/domain"
)

type sampleInput struct {
	Name        string      `json:"name" validate:"required,max=10"`
	Periodicity string      `json:"periodicity" validate:"required,oneof=WEEKLY MONTHLY"`
	Members     []uuid.UUID `json:"members" validate:"required,min=1,dive,required"`
	Limit       int         `json:"limit" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	valid := sampleInput{Name: "groceries", Periodicity: "WEEKLY", Members: []uuid.UUID{uuid.New()}}

	tests := []struct {
		name      string
		mutate    func(in *sampleInput)
		wantField string
	}{
		{"valid input", func(*sampleInput) {}, ""},
		{"missing name", func(in *sampleInput) { in.Name = "" }, "name"},
		{"name too long", func(in *sampleInput) { in.Name = "a very long name" }, "name"},
		{"unknown periodicity", func(in *sampleInput) { in.Periodicity = "DAILY" }, "periodicity"},
		{"no members", func(in *sampleInput) { in.Members = nil }, "members"},
		{"nil member", func(in *sampleInput) { in.Members = []uuid.UUID{uuid.Nil} }, "members[0]"},
		{"negative limit", func(in *sampleInput) { in.Limit = -1 }, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := Struct(in)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}
