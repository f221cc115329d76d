package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/pkg/errors"
)

// decodeTokenResponse extracts and validates the token data of a successful result.
func decodeTokenResponse(result apiclient.Result) (TokenResponse, error) {
	var resp TokenResponse
	if err := result.Decode(&resp); err != nil {
		return TokenResponse{}, fmt.Errorf("%w: %w", ErrMissingData, err)
	}
	if err := validateTokenResponse(resp); err != nil {
		return TokenResponse{}, err
	}
	return resp, nil
}

func validateTokenResponse(resp TokenResponse) error {
	if resp.AccessToken == "" {
		return errors.Wrap(ErrMissingData, "[validateTokenResponse] access_token is empty")
	}
	if resp.TokenType != "" && !strings.EqualFold(resp.TokenType, "bearer") {
		return errors.Wrapf(ErrUnsupportedTokenType, "[validateTokenResponse] %q", resp.TokenType)
	}
	return nil
}
