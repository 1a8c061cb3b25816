package handlers

import (
	"schedulo/services/availability"
	"schedulo/services/calendar"
	"schedulo/services/conversation"
)

// HandlerBundle groups the endpoint handlers' dependencies into one struct.
type HandlerBundle struct {
	Conversation conversation.Service
	Calendar     calendar.Service
	Resolver     availability.Resolver
}
