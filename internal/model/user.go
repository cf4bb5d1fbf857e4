package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a document in the users collection. PasswordHash is empty for
// accounts provisioned through external login.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name,omitempty"`
	PasswordHash   []byte             `bson:"password_hash,omitempty"`
	TelegramToken  string             `bson:"telegram_token,omitempty"`
	TelegramChatID string             `bson:"telegram_chat_id,omitempty"`
	IsPro          bool               `bson:"is_pro"`
	CreatedAt      primitive.DateTime `bson:"created_at"`
	UpdatedAt      primitive.DateTime `bson:"updated_at"`
}

// HasTelegramCredential reports whether both halves of the notification
// credential are configured.
func (u User) HasTelegramCredential() bool {
	return u.TelegramToken != "" && u.TelegramChatID != ""
}
