package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken cobre token malformado, assinatura inválida ou expirado.
var ErrInvalidToken = errors.New("token inválido")

// Claims representa as informações presentes no token de sessão.
// O papel não viaja no token: é sempre relido do banco.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CitizenID converte o subject para UUID.
func (c *Claims) CitizenID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL expõe a validade configurada.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// Issue cria um JWT HS256 vinculando id e email do cidadão.
func (m *JWTManager) Issue(citizenID uuid.UUID, email string) (string, time.Time, error) {
	now := m.now().UTC()
	expires := now.Add(m.ttl)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   citizenID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expires, nil
}

// Verify verifica assinatura, algoritmo, expiração e subject.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.CitizenID(); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	return claims, nil
}
