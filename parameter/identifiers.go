package parameter

// Length bounds of the opaque identifiers.
const (
	ClientIDMaxLength     = 255
	StateMaxLength        = 512
	CodeMaxLength         = 255
	SubjectMaxLength      = 255
	ClientSecretMaxLength = 255
)

// ClientID identifies the relying party.
type ClientID string

// ParseClientID validates a client_id value.
func ParseClientID(value string) (ClientID, error) {
	v, err := ParseBounded(value, 1, ClientIDMaxLength)
	return ClientID(v), err
}

func (c ClientID) String() string { return string(c) }

func (c ClientID) MarshalText() ([]byte, error) { return []byte(c), nil }

func (c *ClientID) UnmarshalText(text []byte) error {
	v, err := ParseClientID(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// State is the opaque value the client uses to correlate the authorize
// request with its callback.
type State string

// ParseState validates a state value.
func ParseState(value string) (State, error) {
	v, err := ParseBounded(value, SecureLength, StateMaxLength)
	return State(v), err
}

func (s State) String() string { return string(s) }

// Code is the one-time authorization code handed to the client.
type Code string

// ParseCode validates an authorization code value.
func ParseCode(value string) (Code, error) {
	v, err := ParseBounded(value, SecureLength, CodeMaxLength)
	return Code(v), err
}

func (c Code) String() string { return string(c) }

// Subject is the stable user identifier carried in the sub claim.
type Subject string

// ParseSubject validates a subject value.
func ParseSubject(value string) (Subject, error) {
	v, err := ParseBounded(value, SecureLength, SubjectMaxLength)
	return Subject(v), err
}

func (s Subject) String() string { return string(s) }

func (s Subject) MarshalText() ([]byte, error) { return []byte(s), nil }

func (s *Subject) UnmarshalText(text []byte) error {
	v, err := ParseSubject(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ClientSecret is the credential of a confidential client. It is never
// rendered in error messages.
type ClientSecret string

// ParseClientSecret validates a client_secret value.
func ParseClientSecret(value string) (ClientSecret, error) {
	v, err := ParseBounded(value, SecureLength, ClientSecretMaxLength)
	return ClientSecret(v), err
}

func (s ClientSecret) String() string { return "[REDACTED]" }
