package energa

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Credentials holds the MojLicznik login pair plus the meter point id
// resolved during login. The id stays zero until the first successful
// login and is only ever written by Client.Login.
type Credentials struct {
	Email string
	// ID is the meter point identifier registered to the account.
	ID int64

	password string
}

func NewCredentials(email, password string) (*Credentials, error) {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) {
		return nil, &ValidationError{Reason: "invalid email address"}
	}
	return &Credentials{
		Email:    email,
		password: strings.TrimSpace(password),
	}, nil
}

// FormData returns the login form body: the credential pair under the
// portal's field names plus the constants the portal requires on every
// login POST.
func (c *Credentials) FormData() map[string]string {
	return map[string]string{
		formUsernameField: c.Email,
		formPasswordField: c.password,
		"save":            "save",
		"selectedForm":    "1",
		"loginNow":        "zaloguj się",
		"clientOS":        "web",
	}
}
