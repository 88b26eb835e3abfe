package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edulearn/lms/internal/portal/form"
	"github.com/edulearn/lms/internal/portal/session"
)

var errNotSignedIn = errors.New("not signed in")

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var in form.LoginInput

	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Sign in and store the credential",
		Example: `  lmsctl login --email ada@example.com --password 'S3cret!pw'`,
		Args:    cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			if err := form.Validate(in); err != nil {
				return err
			}
			if err := report(cmd, p.session.Login(cmd.Context(), in.Email, in.Password)); err != nil {
				return err
			}
			return printUser(cmd, p.session.Snapshot())
		}),
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var in form.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student account and sign in",
		Args:  cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}
			if err := report(cmd, p.session.Register(cmd.Context(), in)); err != nil {
				return err
			}
			return printUser(cmd, p.session.Snapshot())
		}),
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "password again (defaults to --password)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			return report(cmd, p.session.Logout(cmd.Context()))
		}),
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			return printUser(cmd, p.session.Snapshot())
		}),
	}
}

func newForgotPasswordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset e-mail",
		Args:  cobra.ExactArgs(1),
		RunE: withPortal(opts, func(cmd *cobra.Command, args []string, p *portal) error {
			return report(cmd, p.session.ForgotPassword(cmd.Context(), args[0]))
		}),
	}
}

func newResetPasswordCmd(opts *rootOptions) *cobra.Command {
	var in form.ResetPasswordInput

	cmd := &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: withPortal(opts, func(cmd *cobra.Command, args []string, p *portal) error {
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}
			if err := form.Validate(in); err != nil {
				return err
			}
			return report(cmd, p.session.ResetPassword(cmd.Context(), args[0], in.Password))
		}),
	}

	cmd.Flags().StringVar(&in.Password, "password", "", "new password")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "new password again (defaults to --password)")
	return cmd
}

func newUpdatePasswordCmd(opts *rootOptions) *cobra.Command {
	var in form.ChangePasswordInput

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Change the signed-in user's password",
		Args:  cobra.NoArgs,
		RunE: withPortal(opts, func(cmd *cobra.Command, _ []string, p *portal) error {
			if !p.session.Snapshot().Authenticated() {
				return errNotSignedIn
			}
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.NewPassword
			}
			if err := form.Validate(in); err != nil {
				return err
			}
			return report(cmd, p.session.UpdatePassword(cmd.Context(), in.CurrentPassword, in.NewPassword))
		}),
	}

	cmd.Flags().StringVar(&in.CurrentPassword, "current", "", "current password")
	cmd.Flags().StringVar(&in.NewPassword, "new", "", "new password")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm", "", "new password again (defaults to --new)")
	return cmd
}

func printUser(cmd *cobra.Command, snap session.Snapshot) error {
	if snap.User == nil {
		return errNotSignedIn
	}
	u := snap.User
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", u.Name(), u.Email, u.Role)
	return nil
}
