package user

import "fmt"

const resetPasswordSubject = "Reset Password"

func resetPasswordBody(resetURL string) string {
	return fmt.Sprintf(
		`<p>You can reset your password by clicking <a href="%[1]s" target="_blank">Reset your password</a>.</p>`+
			`<p>If the above link does not work for some reason then copy paste this link in a new tab: %[1]s</p>`+
			`<p>If you have not requested this, kindly ignore.</p>`,
		resetURL,
	)
}
