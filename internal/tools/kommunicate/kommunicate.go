// Package kommunicate exposes the Kommunicate API adapter as MCP tools.
package kommunicate

import (
	"context"
	"fmt"

	"kommunicate-mcp-go/internal/tools"
	"kommunicate-mcp-go/pkg/kommunicate"
)

// Tool names.
const (
	ToolCreateConversation = "create_conversation"
	ToolSendMessage        = "send_message"
	ToolChangeStatus       = "change_conversation_status"
	ToolUpdateUserDetails  = "update_user_details"
	ToolChangeAssignee     = "change_conversation_assignee"
	ToolGetUserDetails     = "get_user_details"
)

// API is the subset of *kommunicate.Client used by the tools.
type API interface {
	CreateConversation(ctx context.Context, p kommunicate.CreateConversationParams) (kommunicate.Object, error)
	SendMessage(ctx context.Context, p kommunicate.SendMessageParams) (kommunicate.Object, error)
	ChangeConversationStatus(ctx context.Context, p kommunicate.ChangeStatusParams) (kommunicate.Object, error)
	UpdateUserDetails(ctx context.Context, p kommunicate.UpdateUserParams) (kommunicate.Object, error)
	ChangeConversationAssignee(ctx context.Context, p kommunicate.ChangeAssigneeParams) (kommunicate.Object, error)
	GetUserDetails(ctx context.Context, userIDs []string) ([]kommunicate.Object, error)
}

// Register adds all Kommunicate tools to the registry.
func Register(registry *tools.Registry, api API) error {
	builders := []func(API) (tools.Tool, error){
		newCreateConversationTool,
		newSendMessageTool,
		newChangeStatusTool,
		newUpdateUserDetailsTool,
		newChangeAssigneeTool,
		newGetUserDetailsTool,
	}
	for _, build := range builders {
		tool, err := build(api)
		if err != nil {
			return err
		}
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("register %s: %w", tool.Definition().Name, err)
		}
	}
	return nil
}

func openWorld(title string, readOnly, idempotent bool) *tools.Annotations {
	yes, no := true, false
	a := &tools.Annotations{
		Title:          title,
		ReadOnlyHint:   readOnly,
		IdempotentHint: idempotent,
		OpenWorldHint:  &yes,
	}
	if !readOnly {
		a.DestructiveHint = &no
	}
	return a
}
