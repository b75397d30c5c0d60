package services

import (
	"crypto/rand"
	"math/big"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt ignores anything longer

	tempPasswordLength = 16

	uppercaseChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijkmnopqrstuvwxyz"
	numberChars    = "23456789"
	symbolChars    = "!@#$%&*?-_+="
)

// PasswordProblems lists every rule p breaks; empty means acceptable.
// Rules: at least 8 characters with upper, lower, digit and symbol.
func PasswordProblems(p string) []string {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	n := 0
	for _, r := range p {
		n++
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsSpace(r) && !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	var problems []string
	if n < minPasswordLength {
		problems = append(problems, "must have at least 8 characters")
	}
	if len(p) > maxPasswordBytes {
		problems = append(problems, "must have at most 72 bytes")
	}
	if !hasUpper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "must contain a digit")
	}
	if !hasSymbol {
		problems = append(problems, "must contain a symbol")
	}
	return problems
}

func checkPassword(field, p string) error {
	problems := PasswordProblems(p)
	if len(problems) == 0 {
		return nil
	}
	v := &ValidationError{}
	for _, msg := range problems {
		v.Add(field, msg)
	}
	return v
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GeneratePassword returns a random password that always satisfies the
// policy: one character of each class, the rest from the full pool,
// shuffled with crypto/rand.
func GeneratePassword() (string, error) {
	sets := []string{uppercaseChars, lowercaseChars, numberChars, symbolChars}
	pool := uppercaseChars + lowercaseChars + numberChars + symbolChars

	out := make([]byte, tempPasswordLength)
	for i := range out {
		charset := pool
		if i < len(sets) {
			charset = sets[i]
		}
		ch, err := randChar(charset)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}

	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}
	return string(out), nil
}

func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

// provisionPassword picks the initial password for an account created
// without one: the configured default when set, a generated one otherwise.
func provisionPassword(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return GeneratePassword()
}
