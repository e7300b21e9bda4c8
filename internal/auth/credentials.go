package auth

import "crypto/subtle"

// Credentials is the single configured admin account. Only the bcrypt hash
// of the password is kept.
type Credentials struct {
	username string
	hash     string
}

func NewCredentials(username, password string) (*Credentials, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Credentials{username: username, hash: hash}, nil
}

// NewCredentialsFromHash accepts an already hashed password.
func NewCredentialsFromHash(username, hash string) *Credentials {
	return &Credentials{username: username, hash: hash}
}

func (c *Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := CheckPasswordHash(password, c.hash)
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
