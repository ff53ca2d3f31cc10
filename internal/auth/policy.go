package auth

import "chat-api/internal/models"

// CanAuthenticate reports whether the account may hold a session.
func CanAuthenticate(user models.User) bool {
	return user.IsActive
}

// CanAccessThread reports whether userID is a participant of the thread.
func CanAccessThread(userID int64, thread models.Thread) bool {
	return userID != 0 && thread.HasParticipant(userID)
}
