package app

import (
	"farmers-connect/internal/form"
)

// RegistrationForm validates account details locally. Sending them belongs
// to the authentication service.
type RegistrationForm struct {
	Store    *form.Store
	Password form.SecretToggle
}

func NewRegistrationForm() *RegistrationForm {
	return &RegistrationForm{Store: form.NewStore(form.RegistrationSchema())}
}

// Validate returns the message to show, or "" when the form can be sent.
func (r *RegistrationForm) Validate() string {
	schema := r.Store.Schema()
	return form.ValidationMessage(schema, form.Validate(schema, r.Store.Snapshot()))
}

// DisplayedPassword is the password as the input currently shows it.
func (r *RegistrationForm) DisplayedPassword() string {
	return r.Password.Mask(r.Store.Get("password"))
}
