// Package contact validates contact form messages and relays them to the
// site owner through an email service.
package contact

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Message is what a visitor submits through the contact form.
type Message struct {
	Name    string `form:"nom" json:"nom" validate:"required,max=100"`
	Surname string `form:"prenom" json:"prenom" validate:"required,max=100"`
	Email   string `form:"email" json:"email" validate:"required,email,max=254"`
	Text    string `form:"message" json:"message" validate:"required,max=5000"`
}

// Trimmed returns m with surrounding whitespace removed from every field.
func (m Message) Trimmed() Message {
	return Message{
		Name:    strings.TrimSpace(m.Name),
		Surname: strings.TrimSpace(m.Surname),
		Email:   strings.TrimSpace(m.Email),
		Text:    strings.TrimSpace(m.Text),
	}
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid contact message: %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields and the email address format. Names
// must fit on one line since they end up in mail headers.
func (m Message) Validate() error {
	var fields []string

	err := validate.Struct(m)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
	}

	if strings.ContainsAny(m.Name, "\r\n") && !slices.Contains(fields, "name") {
		fields = append(fields, "name")
	}
	if strings.ContainsAny(m.Surname, "\r\n") && !slices.Contains(fields, "surname") {
		fields = append(fields, "surname")
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
