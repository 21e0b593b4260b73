package kommunicate

import (
	"context"

	"kommunicate-mcp-go/internal/tools"
	"kommunicate-mcp-go/pkg/kommunicate"
)

// UpdateUserDetailsArgs are the arguments of update_user_details.
type UpdateUserDetailsArgs struct {
	UserID      string         `json:"userId" jsonschema:"The userId of the user to update. Also sent as Of-User-Id."`
	Email       *string        `json:"email,omitempty" jsonschema:"New email address."`
	DisplayName *string        `json:"displayName,omitempty" jsonschema:"New display name."`
	ImageLink   *string        `json:"imageLink,omitempty" jsonschema:"URL of the new profile image."`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"Custom key/value metadata to store on the user."`
}

const updateUserDetailsDescription = `Update the details of a Kommunicate user.

Only the fields that are provided are sent; omitted fields are left unchanged.

Example: {"userId": "user123", "displayName": "Jane Doe", "metadata": {"plan": "pro"}}`

func newUpdateUserDetailsTool(api API) (tools.Tool, error) {
	return tools.NewTypedTool(ToolUpdateUserDetails, updateUserDetailsDescription,
		openWorld("Update user details", false, true),
		func(ctx context.Context, in UpdateUserDetailsArgs) (any, error) {
			params := kommunicate.UpdateUserParams{
				UserID:      in.UserID,
				Email:       kommunicate.FromPtr(in.Email),
				DisplayName: kommunicate.FromPtr(in.DisplayName),
				ImageLink:   kommunicate.FromPtr(in.ImageLink),
			}
			if in.Metadata != nil {
				params.Metadata = kommunicate.Some(in.Metadata)
			}
			return api.UpdateUserDetails(ctx, params)
		})
}

// GetUserDetailsArgs are the arguments of get_user_details.
type GetUserDetailsArgs struct {
	UserIDList []string `json:"userIdList" jsonschema:"List of userIds to fetch."`
}

const getUserDetailsDescription = `Get the details of one or more Kommunicate users.

Example: {"userIdList": ["user123", "user456"]}

Returns a list of user detail objects.`

func newGetUserDetailsTool(api API) (tools.Tool, error) {
	return tools.NewTypedTool(ToolGetUserDetails, getUserDetailsDescription,
		openWorld("Get user details", true, true),
		func(ctx context.Context, in GetUserDetailsArgs) (any, error) {
			return api.GetUserDetails(ctx, in.UserIDList)
		})
}
