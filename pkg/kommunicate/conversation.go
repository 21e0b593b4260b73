package kommunicate

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// API paths for conversation (group) operations.
const (
	PathCreateConversation = "/rest/ws/group/conversation"
	PathSendMessage        = "/rest/ws/message/v2/send"
	PathChangeStatus       = "/rest/ws/group/status/change"
	PathChangeAssignee     = "/rest/ws/group/assignee/change"
)

// Conversation status codes understood by the remote API. They are listed for
// callers; the client forwards any integer unchanged.
const (
	StatusOpen      = 1
	StatusResolved  = 2
	StatusPending   = 3
	StatusBotClosed = 4
	StatusSnoozed   = 5
)

// CreateConversationParams are the inputs of CreateConversation.
type CreateConversationParams struct {
	GroupName string
	// GroupMemberList holds user IDs or email addresses of agents, bots or users.
	GroupMemberList []string
}

// SendMessageParams are the inputs of SendMessage.
type SendMessageParams struct {
	GroupID      string
	FromUserName string
	Message      string
}

// ChangeStatusParams are the inputs of ChangeConversationStatus.
type ChangeStatusParams struct {
	GroupID  string
	Status   int
	OfUserID Optional[string]
}

// ChangeAssigneeParams are the inputs of ChangeConversationAssignee.
type ChangeAssigneeParams struct {
	GroupID           string
	Assignee          string
	OfUserID          Optional[string]
	SendNotifyMessage Optional[bool]
	TakeOverFromBot   Optional[bool]
}

// CreateConversation creates a new group conversation.
func (c *Client) CreateConversation(ctx context.Context, p CreateConversationParams) (Object, error) {
	members := p.GroupMemberList
	if members == nil {
		members = []string{}
	}
	var out Object
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   PathCreateConversation,
		body: map[string]any{
			"groupName":       p.GroupName,
			"groupMemberList": members,
		},
	}, &out)
	return out, err
}

// SendMessage posts a message into an existing conversation.
func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (Object, error) {
	var out Object
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   PathSendMessage,
		body: map[string]any{
			"groupId":      p.GroupID,
			"fromUserName": p.FromUserName,
			"message":      p.Message,
		},
	}, &out)
	return out, err
}

// ChangeConversationStatus sets the status of a conversation. Parameters go
// in the query string because the remote endpoint expects them there.
func (c *Client) ChangeConversationStatus(ctx context.Context, p ChangeStatusParams) (Object, error) {
	query := url.Values{}
	query.Set("groupId", p.GroupID)
	query.Set("status", strconv.Itoa(p.Status))

	var out Object
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		path:     PathChangeStatus,
		query:    query,
		ofUserID: p.OfUserID.ValueOr(DefaultOfUserID),
	}, &out)
	return out, err
}

// ChangeConversationAssignee hands a conversation to another agent.
// Both flags default to true and are sent as the literals "true"/"false".
func (c *Client) ChangeConversationAssignee(ctx context.Context, p ChangeAssigneeParams) (Object, error) {
	query := url.Values{}
	query.Set("groupId", p.GroupID)
	query.Set("assignee", p.Assignee)
	query.Set("sendNotifyMessage", strconv.FormatBool(p.SendNotifyMessage.ValueOr(true)))
	query.Set("takeOverFromBot", strconv.FormatBool(p.TakeOverFromBot.ValueOr(true)))

	var out Object
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		path:     PathChangeAssignee,
		query:    query,
		ofUserID: p.OfUserID.ValueOr(DefaultOfUserID),
	}, &out)
	return out, err
}
