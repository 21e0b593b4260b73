package kommunicate

import (
	"context"
	"net/http"
)

// API paths for user operations.
const (
	PathUpdateUser  = "/rest/ws/user/update"
	PathUserDetails = "/rest/ws/user/v2/detail"
)

// UpdateUserParams are the inputs of UpdateUserDetails. Only fields that are
// set are sent, so the remote side leaves the others untouched.
type UpdateUserParams struct {
	UserID      string
	Email       Optional[string]
	DisplayName Optional[string]
	ImageLink   Optional[string]
	Metadata    Optional[map[string]any]
}

// body returns the partial update payload.
func (p UpdateUserParams) body() map[string]any {
	body := map[string]any{}
	if v, ok := p.Email.Get(); ok {
		body["email"] = v
	}
	if v, ok := p.DisplayName.Get(); ok {
		body["displayName"] = v
	}
	if v, ok := p.ImageLink.Get(); ok {
		body["imageLink"] = v
	}
	if v, ok := p.Metadata.Get(); ok {
		body["metadata"] = v
	}
	return body
}

// UpdateUserDetails applies a partial update to a user, acting as that user.
func (c *Client) UpdateUserDetails(ctx context.Context, p UpdateUserParams) (Object, error) {
	var out Object
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     PathUpdateUser,
		ofUserID: p.UserID,
		body:     p.body(),
	}, &out)
	return out, err
}

// GetUserDetails fetches the details of the given users.
func (c *Client) GetUserDetails(ctx context.Context, userIDs []string) ([]Object, error) {
	if userIDs == nil {
		userIDs = []string{}
	}
	var out []Object
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   PathUserDetails,
		body:   map[string]any{"userIdList": userIDs},
	}, &out)
	return out, err
}
