package handler

import (
	"strings"

	"crm/internal/assignment/models"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
)

type AssignConversationRequest struct {
	ConversationID int64  `json:"conversationId"`
	Method         string `json:"method"`

	method models.Method
}

func (r *AssignConversationRequest) Validate() error {
	if id.ConversationID(r.ConversationID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "conversationId is required")
	}
	m, err := models.ParseMethod(r.Method)
	if err != nil {
		return err
	}
	r.method = m
	return nil
}

type AssignUserRequest struct {
	ConversationID int64  `json:"conversationId"`
	UserID         int64  `json:"userId"`
	Method         string `json:"method"`

	method models.Method
}

func (r *AssignUserRequest) Validate() error {
	if id.ConversationID(r.ConversationID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "conversationId is required")
	}
	if id.IdentityID(r.UserID).IsNil() {
		return dErrors.New(dErrors.CodeValidation, "userId is required")
	}
	m, err := models.ParseMethod(r.Method)
	if err != nil {
		return err
	}
	r.method = m
	return nil
}

type RouteRequest struct {
	Message string `json:"message"`
}

func (r *RouteRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return dErrors.New(dErrors.CodeValidation, "message is required")
	}
	return nil
}
