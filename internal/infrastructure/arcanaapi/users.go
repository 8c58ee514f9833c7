package arcanaapi

import (
	"context"
	"net/http"

	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

type userResponse struct {
	envelope
	User *session.User `json:"user"`
}

// UserByToken resolves the user owning a session token. A token the backend
// does not recognize is an auth error.
func (c *Client) UserByToken(ctx context.Context, token string) (*session.User, error) {
	const op = "user_by_token"
	var out userResponse
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodPost,
		path:      "/users/by-token",
		body:      tokenRequest{Token: token},
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Result != nil && !*out.Result {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized,
			"session token not recognized", nil, "c41e8a07-5b2d-4f96-9e13-7a0d6b2f8c55")
	}
	if err := out.check(ctx, op); err != nil {
		return nil, err
	}
	if out.User == nil || out.User.ID == "" {
		return nil, missingField(ctx, op, "user")
	}
	return out.User, nil
}

// UserByID returns the public profile of a user.
func (c *Client) UserByID(ctx context.Context, userID string) (*session.User, error) {
	const op = "user_by_id"
	var out userResponse
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodGet,
		path:      "/users/{userId}",
		params:    map[string]string{"userId": userID},
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, missingField(ctx, op, "user")
	}
	return out.User, nil
}
