package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
)

// PermissionSendPayment is the capability required to submit a
// payment intent.
const PermissionSendPayment = "payment:send"

// Claims are the verified contents of a bearer token.
type Claims struct {
	AgentID     string
	Permissions []string
}

// Verifier checks HMAC-signed bearer tokens and enforces that the
// token's identity matches the intent's declared sender. Every
// failure surfaces the same generic message: callers must not be able
// to tell a bad signature from a missing capability. The concrete
// reason is still logged and counted internally.
type Verifier struct {
	secret   []byte
	required []string
	log      logger.Logger
}

// NewVerifier creates a verifier using the shared HMAC secret.
func NewVerifier(secret string, log logger.Logger) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		required: []string{PermissionSendPayment},
		log:      log,
	}
}

// Verify parses and validates the token, then checks identity and
// capability membership against the claimed sender.
func (v *Verifier) Verify(token, claimedAgentID string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, v.reject("invalid_token", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, v.reject("malformed_payload", nil)
	}

	// jwt only validates exp when the claim is present; a token
	// without one would never expire.
	if _, hasExpiry := mapClaims["exp"]; !hasExpiry {
		return nil, v.reject("missing_expiry", nil)
	}

	agentID, _ := mapClaims["agent_id"].(string)
	if agentID == "" {
		return nil, v.reject("malformed_payload", nil)
	}

	rawPermissions, _ := mapClaims["permissions"].([]interface{})
	permissions := make([]string, 0, len(rawPermissions))
	for _, p := range rawPermissions {
		if s, ok := p.(string); ok {
			permissions = append(permissions, s)
		}
	}

	// A stolen token for agent A must not authorize an intent that
	// declares agent B as its sender.
	if agentID != claimedAgentID {
		return nil, v.reject("identity_mismatch", nil)
	}

	for _, required := range v.required {
		if !contains(permissions, required) {
			return nil, v.reject("missing_permission", nil)
		}
	}

	return &Claims{AgentID: agentID, Permissions: permissions}, nil
}

// reject logs the internal reason and returns the uniform
// caller-facing error.
func (v *Verifier) reject(reason string, cause error) error {
	if cause != nil {
		v.log.DebugWithComponent(logger.Auth, "token rejected (%s): %v", reason, cause)
	} else {
		v.log.DebugWithComponent(logger.Auth, "token rejected (%s)", reason)
	}
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	return errs.Wrap(errs.KindAuthentication, cause, "authentication failed")
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
