package push

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmMaxTokens is the per-request token cap of SendEachForMulticast.
const fcmMaxTokens = 500

type FCMConfig struct {
	ProjectID             string
	CredentialsFile       string
	CredentialsJSONBase64 string
}

type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type FCMSender struct {
	client multicastClient
}

func NewFCMSender(ctx context.Context, cfg FCMConfig) (*FCMSender, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("fcm project id is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSONBase64 != "":
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("decode fcm credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(jsonKey))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}

	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, tokens []string, msg Message) (Result, error) {
	var result Result
	if len(tokens) == 0 {
		return result, nil
	}

	for start := 0; start < len(tokens); start += fcmMaxTokens {
		chunk := tokens[start:min(start+fcmMaxTokens, len(tokens))]

		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: chunk,
			Data:   msg.Data,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
		})
		if err != nil {
			return result, fmt.Errorf("fcm multicast: %w", err)
		}

		result.Sent += resp.SuccessCount
		result.Failed += resp.FailureCount
		for i, r := range resp.Responses {
			if r == nil || r.Success || i >= len(chunk) {
				continue
			}
			if messaging.IsUnregistered(r.Error) || errorutils.IsInvalidArgument(r.Error) {
				result.InvalidTokens = append(result.InvalidTokens, chunk[i])
			}
		}
	}

	return result, nil
}
