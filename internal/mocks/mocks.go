package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"team-chat-service/internal/models"
	"team-chat-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Register(ctx context.Context, params repositories.RegisterUserParams) (models.User, error) {
	args := m.Called(ctx, params)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID int, params repositories.UpdateUserParams) (models.User, error) {
	args := m.Called(ctx, userID, params)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (*models.User, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListOnline(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type ChannelRepositoryMock struct {
	mock.Mock
}

func (m *ChannelRepositoryMock) CreateChannel(ctx context.Context, params repositories.CreateChannelParams) (models.Channel, error) {
	args := m.Called(ctx, params)
	var channel models.Channel
	if val := args.Get(0); val != nil {
		channel = val.(models.Channel)
	}
	return channel, args.Error(1)
}

func (m *ChannelRepositoryMock) UpdateChannel(ctx context.Context, channelID int, params repositories.UpdateChannelParams) (models.Channel, error) {
	args := m.Called(ctx, channelID, params)
	var channel models.Channel
	if val := args.Get(0); val != nil {
		channel = val.(models.Channel)
	}
	return channel, args.Error(1)
}

func (m *ChannelRepositoryMock) ListChannels(ctx context.Context, userID *int, includePrivate bool) ([]models.Channel, error) {
	args := m.Called(ctx, userID, includePrivate)
	var channels []models.Channel
	if val := args.Get(0); val != nil {
		channels = val.([]models.Channel)
	}
	return channels, args.Error(1)
}

func (m *ChannelRepositoryMock) GetChannel(ctx context.Context, channelID int) (models.Channel, error) {
	args := m.Called(ctx, channelID)
	var channel models.Channel
	if val := args.Get(0); val != nil {
		channel = val.(models.Channel)
	}
	return channel, args.Error(1)
}

type MembershipRepositoryMock struct {
	mock.Mock
}

func (m *MembershipRepositoryMock) Join(ctx context.Context, channelID, userID int, role models.MembershipRole) (models.ChannelMembership, error) {
	args := m.Called(ctx, channelID, userID, role)
	var membership models.ChannelMembership
	if val := args.Get(0); val != nil {
		membership = val.(models.ChannelMembership)
	}
	return membership, args.Error(1)
}

func (m *MembershipRepositoryMock) Leave(ctx context.Context, channelID, userID int) (repositories.LeaveResult, error) {
	args := m.Called(ctx, channelID, userID)
	var result repositories.LeaveResult
	if val := args.Get(0); val != nil {
		result = val.(repositories.LeaveResult)
	}
	return result, args.Error(1)
}

func (m *MembershipRepositoryMock) ListMembers(ctx context.Context, channelID int) ([]models.ChannelMembership, error) {
	args := m.Called(ctx, channelID)
	var members []models.ChannelMembership
	if val := args.Get(0); val != nil {
		members = val.([]models.ChannelMembership)
	}
	return members, args.Error(1)
}

func (m *MembershipRepositoryMock) IsMember(ctx context.Context, channelID, userID int) (bool, error) {
	args := m.Called(ctx, channelID, userID)
	return args.Bool(0), args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) GetOrCreate(ctx context.Context, user1ID, user2ID int) (models.DirectMessageConversation, error) {
	args := m.Called(ctx, user1ID, user2ID)
	var conv models.DirectMessageConversation
	if val := args.Get(0); val != nil {
		conv = val.(models.DirectMessageConversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.DirectMessageConversation, error) {
	args := m.Called(ctx, userID)
	var conversations []models.DirectMessageConversation
	if val := args.Get(0); val != nil {
		conversations = val.([]models.DirectMessageConversation)
	}
	return conversations, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, params repositories.CreateMessageParams) (models.Message, error) {
	args := m.Called(ctx, params)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetChannelMessages(ctx context.Context, channelID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, channelID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetDirectMessages(ctx context.Context, userID, recipientID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, userID, recipientID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateMessage(ctx context.Context, messageID int, content string) (models.Message, error) {
	args := m.Called(ctx, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID, actingUserID int) error {
	args := m.Called(ctx, messageID, actingUserID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) SearchMessages(ctx context.Context, query string, userID int, channelID *int) ([]models.Message, error) {
	args := m.Called(ctx, query, userID, channelID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type AttachmentRepositoryMock struct {
	mock.Mock
}

func (m *AttachmentRepositoryMock) CreateAttachment(ctx context.Context, params repositories.CreateAttachmentParams) (models.FileAttachment, error) {
	args := m.Called(ctx, params)
	var attachment models.FileAttachment
	if val := args.Get(0); val != nil {
		attachment = val.(models.FileAttachment)
	}
	return attachment, args.Error(1)
}

func (m *AttachmentRepositoryMock) ListByMessage(ctx context.Context, messageID int) ([]models.FileAttachment, error) {
	args := m.Called(ctx, messageID)
	var attachments []models.FileAttachment
	if val := args.Get(0); val != nil {
		attachments = val.([]models.FileAttachment)
	}
	return attachments, args.Error(1)
}
