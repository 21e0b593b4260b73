package kommunicate

import (
	"context"

	"kommunicate-mcp-go/internal/tools"
	"kommunicate-mcp-go/pkg/kommunicate"
)

// CreateConversationArgs are the arguments of create_conversation.
type CreateConversationArgs struct {
	GroupName       string   `json:"groupName" jsonschema:"Name of the group conversation."`
	GroupMemberList []string `json:"groupMemberList" jsonschema:"List of userIds or email addresses of agents, bots or users."`
}

const createConversationDescription = `Create a new conversation in Kommunicate.

Returns the JSON response from the Kommunicate API.`

func newCreateConversationTool(api API) (tools.Tool, error) {
	return tools.NewTypedTool(ToolCreateConversation, createConversationDescription,
		openWorld("Create conversation", false, false),
		func(ctx context.Context, in CreateConversationArgs) (any, error) {
			return api.CreateConversation(ctx, kommunicate.CreateConversationParams{
				GroupName:       in.GroupName,
				GroupMemberList: in.GroupMemberList,
			})
		})
}

// SendMessageArgs are the arguments of send_message.
type SendMessageArgs struct {
	GroupID      string `json:"groupId" jsonschema:"The group ID of the conversation."`
	FromUserName string `json:"fromUserName" jsonschema:"The userId of the sender."`
	Message      string `json:"message" jsonschema:"The message text."`
}

const sendMessageDescription = `Send a message to a Kommunicate conversation.

Returns the JSON response from the Kommunicate API.`

func newSendMessageTool(api API) (tools.Tool, error) {
	return tools.NewTypedTool(ToolSendMessage, sendMessageDescription,
		openWorld("Send message", false, false),
		func(ctx context.Context, in SendMessageArgs) (any, error) {
			return api.SendMessage(ctx, kommunicate.SendMessageParams{
				GroupID:      in.GroupID,
				FromUserName: in.FromUserName,
				Message:      in.Message,
			})
		})
}

// ChangeStatusArgs are the arguments of change_conversation_status.
type ChangeStatusArgs struct {
	GroupID  string  `json:"groupId" jsonschema:"The unique identifier of the conversation (groupId)."`
	Status   int     `json:"status" jsonschema:"New status code: 1 Open, 2 Resolved, 3 Pending, 4 Bot Closed, 5 Snoozed."`
	OfUserID *string `json:"ofUserId,omitempty" jsonschema:"User ID sent in the Of-User-Id header. Defaults to bot."`
}

const changeStatusDescription = `Update the status of a specific conversation in Kommunicate.

Conversations can be in different states such as open, resolved or pending.
Provide the groupId of the conversation and the new status code.

Available status codes:
  - 1: Open - conversation is active and unresolved.
  - 2: Resolved - conversation has been completed or closed.
  - 3: Pending - awaiting response or further action.
  - 4: Bot Closed - conversation closed automatically by bot.
  - 5: Snoozed - temporarily inactive or deferred.

ofUserId is optional and defaults to "bot".

Example: mark conversation "support-12345" as resolved with
  {"groupId": "support-12345", "status": 2}
or act as a specific user with
  {"groupId": "support-12345", "status": 2, "ofUserId": "user@example.com"}`

func newChangeStatusTool(api API) (tools.Tool, error) {
	return tools.NewTypedTool(ToolChangeStatus, changeStatusDescription,
		openWorld("Change conversation status", false, true),
		func(ctx context.Context, in ChangeStatusArgs) (any, error) {
			return api.ChangeConversationStatus(ctx, kommunicate.ChangeStatusParams{
				GroupID:  in.GroupID,
				Status:   in.Status,
				OfUserID: kommunicate.FromPtr(in.OfUserID),
			})
		})
}

// ChangeAssigneeArgs are the arguments of change_conversation_assignee.
type ChangeAssigneeArgs struct {
	GroupID           string  `json:"groupId" jsonschema:"The unique identifier of the conversation (groupId)."`
	Assignee          string  `json:"assignee" jsonschema:"userId or email of the agent to assign the conversation to."`
	OfUserID          *string `json:"ofUserId,omitempty" jsonschema:"User ID sent in the Of-User-Id header. Defaults to bot."`
	SendNotifyMessage *bool   `json:"sendNotifyMessage,omitempty" jsonschema:"Post an assignment notification into the conversation. Defaults to true."`
	TakeOverFromBot   *bool   `json:"takeOverFromBot,omitempty" jsonschema:"Remove the bot from the conversation when assigning. Defaults to true."`
}

const changeAssigneeDescription = `Change the assignee of a Kommunicate conversation.

The conversation identified by groupId is handed to the given agent.
sendNotifyMessage and takeOverFromBot default to true; ofUserId defaults to "bot".

Example: {"groupId": "support-12345", "assignee": "agent@example.com", "takeOverFromBot": false}`

func newChangeAssigneeTool(api API) (tools.Tool, error) {
	return tools.NewTypedTool(ToolChangeAssignee, changeAssigneeDescription,
		openWorld("Change conversation assignee", false, true),
		func(ctx context.Context, in ChangeAssigneeArgs) (any, error) {
			return api.ChangeConversationAssignee(ctx, kommunicate.ChangeAssigneeParams{
				GroupID:           in.GroupID,
				Assignee:          in.Assignee,
				OfUserID:          kommunicate.FromPtr(in.OfUserID),
				SendNotifyMessage: kommunicate.FromPtr(in.SendNotifyMessage),
				TakeOverFromBot:   kommunicate.FromPtr(in.TakeOverFromBot),
			})
		})
}
