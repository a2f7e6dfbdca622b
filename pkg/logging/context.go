package logging

import (
	"context"
)

const (
	EventIDKey     = "event_id"
	WikiKey        = "wiki"
	ServiceNameKey = "service_name"
)

func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, EventIDKey, eventID)
}

func WithWiki(ctx context.Context, wiki string) context.Context {
	return context.WithValue(ctx, WikiKey, wiki)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetEventID(ctx context.Context) string {
	if eventID, ok := ctx.Value(EventIDKey).(string); ok {
		return eventID
	}
	return ""
}

func GetWiki(ctx context.Context) string {
	if wiki, ok := ctx.Value(WikiKey).(string); ok {
		return wiki
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 6)

	if eventID := GetEventID(ctx); eventID != "" {
		fields = append(fields, "event_id", eventID)
	}

	if wiki := GetWiki(ctx); wiki != "" {
		fields = append(fields, "wiki", wiki)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
