package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

type registerOutput struct {
	Valid    bool              `json:"valid"`
	Message  string            `json:"message,omitempty"`
	Password string            `json:"password"`
	Values   map[string]string `json:"values"`
}

// newRegisterCmd checks registration details locally. Accounts are created by
// the authentication service, which this client does not call.
func newRegisterCmd(opts *options) *cobra.Command {
	var (
		email, firstName, lastName, password string
		farmer, showPassword                 bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Check registration details before they are sent to the auth service",
		RunE: withRuntime(opts, func(cmd *cobra.Command, rt *runtime) error {
			reg := rt.client.Registration()
			if err := reg.Store.SetAll(map[string]string{
				"email":      email,
				"first_name": firstName,
				"last_name":  lastName,
				"password":   password,
				"is_farmer":  strconv.FormatBool(farmer),
			}); err != nil {
				return err
			}
			if showPassword {
				reg.Password.Toggle()
			}

			message := reg.Validate()
			out := registerOutput{
				Valid:    message == "",
				Message:  message,
				Password: reg.DisplayedPassword(),
				Values:   map[string]string{},
			}
			for _, f := range reg.Store.Schema().Fields {
				if f.Name != "password" {
					out.Values[f.Name] = reg.Store.Get(f.Name)
				}
			}

			line := "Registration details are valid"
			if !out.Valid {
				line = message
			}
			if err := rt.print(out, line); err != nil {
				return err
			}
			if !out.Valid {
				return errNotSucceeded
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&farmer, "farmer", false, "Register as a farmer")
	cmd.Flags().BoolVar(&showPassword, "show-password", false, "Echo the password instead of masking it")
	return cmd
}
