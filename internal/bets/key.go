package bets

import "strings"

const KeySeparator = "|"

// MakeKey gera a chave de "mesmo apostador" a partir de nome e email.
// Duas pessoas com o mesmo nome+email colidem, e isso é esperado
func MakeKey(name, email string) string {
	return strings.ToLower(strings.TrimSpace(name)) + KeySeparator + strings.ToLower(strings.TrimSpace(email))
}
