package mutate

import (
	"errors"
	"strings"

	"linkbox-cli/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type linkInput struct {
	Label string `validate:"required"`
	URL   string `validate:"required,url"`
}

// ValidURL reports whether s parses as a URL with a scheme and a host, opaque or fragment part.
// Reachability is never checked.
func ValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "url") == nil
}

// NormalizeLink trims label and url and checks them.
func NormalizeLink(label, url string) (model.Link, error) {
	in := linkInput{Label: strings.TrimSpace(label), URL: strings.TrimSpace(url)}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return model.Link{}, ValidationError{Message: msgRequired}
				}
			}
			return model.Link{}, ValidationError{Message: msgInvalidURL}
		}
		return model.Link{}, err
	}
	return model.Link{Label: in.Label, URL: in.URL}, nil
}
