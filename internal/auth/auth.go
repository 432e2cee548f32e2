// Package auth checks username/password pairs.
//
// StaticVerifier is a stand-in for a real credential store: plaintext,
// case-sensitive, no lockout. Call sites depend on Verifier so a real
// implementation can replace it.
package auth

// Verifier resolves credentials to a user identity.
type Verifier interface {
	// Verify returns the user ID and true when the credentials match.
	Verify(username, password string) (string, bool)
}

// StaticVerifier checks credentials against a fixed username→password table.
type StaticVerifier struct {
	accounts map[string]string
}

// DefaultAccounts is the built-in account table.
func DefaultAccounts() map[string]string {
	return map[string]string{
		"user1": "pass123",
		"user2": "pass456",
	}
}

// NewStaticVerifier copies accounts into a new verifier.
// A nil map selects DefaultAccounts.
func NewStaticVerifier(accounts map[string]string) *StaticVerifier {
	if accounts == nil {
		accounts = DefaultAccounts()
	}
	table := make(map[string]string, len(accounts))
	for u, p := range accounts {
		table[u] = p
	}
	return &StaticVerifier{accounts: table}
}

// Verify implements Verifier. The identity is the username itself.
func (v *StaticVerifier) Verify(username, password string) (string, bool) {
	stored, ok := v.accounts[username]
	if !ok || stored != password {
		return "", false
	}
	return username, true
}

// Authenticate verifies credentials with v, falling back to the default
// accounts when v is nil. Empty usernames never match.
func Authenticate(v Verifier, username, password string) (string, bool) {
	if username == "" {
		return "", false
	}
	if v == nil {
		v = NewStaticVerifier(nil)
	}
	return v.Verify(username, password)
}
