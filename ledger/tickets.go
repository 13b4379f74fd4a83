package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Ticket identifies one game run. Claims are bound to its nonce.
type Ticket struct {
	Nonce    string
	IssuedAt time.Time
}

type ticketClaims struct {
	jwt.RegisteredClaims
}

// TicketIssuer signs and verifies HS256 run tickets.
type TicketIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTicketIssuer creates an issuer whose tickets expire after ttl.
func NewTicketIssuer(secret string, ttl time.Duration) *TicketIssuer {
	return &TicketIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a ticket with a fresh random nonce.
func (t *TicketIssuer) Issue() (string, Ticket, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", Ticket{}, err
	}
	now := t.now().Truncate(time.Second)
	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Ticket{}, fmt.Errorf("signing ticket: %w", err)
	}
	return signed, Ticket{Nonce: nonce, IssuedAt: now}, nil
}

// Verify checks the signature and expiry of a ticket.
func (t *TicketIssuer) Verify(token string) (Ticket, error) {
	var claims ticketClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Ticket{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if claims.ID == "" || claims.IssuedAt == nil {
		return Ticket{}, fmt.Errorf("%w: missing nonce", ErrInvalidTicket)
	}
	return Ticket{Nonce: claims.ID, IssuedAt: claims.IssuedAt.Time}, nil
}

func newNonce() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
