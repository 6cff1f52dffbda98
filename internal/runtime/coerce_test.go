package runtime_test

import (
	"testing"

	"github.com/aretw0/clearance/internal/runtime"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestDecodeForm(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  domain.ContactForm
		ok    bool
	}{
		{"struct", domain.ContactForm{Email: "a@b.co"}, domain.ContactForm{Email: "a@b.co"}, true},
		{"pointer", &domain.ContactForm{Phone: "555"}, domain.ContactForm{Phone: "555"}, true},
		{"nil pointer", (*domain.ContactForm)(nil), domain.ContactForm{}, false},
		{"json map", map[string]any{"name": "Dana", "email": "d@x.io"}, domain.ContactForm{Name: "Dana", Email: "d@x.io"}, true},
		{"numeric phone", map[string]any{"phone": 5125550100}, domain.ContactForm{Phone: "5125550100"}, true},
		{"missing fields", map[string]string{}, domain.ContactForm{}, true},
		{"string", "dana@example.com", domain.ContactForm{}, false},
		{"nil", nil, domain.ContactForm{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := runtime.DecodeForm(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
