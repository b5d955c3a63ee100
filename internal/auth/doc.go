// Package auth holds the account security pieces that sit in front of the store.
//
// # Credential validation
//
// ValidateUsername, ValidatePassword and ValidateConfirmation check the format
// of sign-up input. Every rule runs independently and the returned Result lists
// all failed rules, so a form can show every problem at once:
//
//	res, err := auth.ValidateSignUp(ctx, userRepo, username, password, confirm)
//	if err != nil {
//		return err
//	}
//	for _, msg := range res.Messages() {
//		fmt.Println(msg)
//	}
//
// ValidateSignUp also asks an AvailabilityChecker whether the username is taken.
//
// # Hashing
//
// BcryptHasher stores credentials as bcrypt hashes. Inputs longer than bcrypt's
// 72-byte limit are pre-hashed with SHA-256.
//
// # Sessions
//
// SessionManager records the signed-in user in the sessions table through scs.
// The session token is kept in a 0600 file so separate invocations share it:
//
//	sessions := auth.NewSessionManager(sqlDB, cfg.Session)
//	defer sessions.Close()
//	err := sessions.SignIn(ctx, user)
package auth
