package variables

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
)

const (
	actorHostKey = "x-operator-host"
	actorUserKey = "x-operator-user"
)

// AppendActor attaches the operator identity to outgoing calls.
func AppendActor(ctx context.Context, actor *alarm.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		actorHostKey, actor.Hostname,
		actorUserKey, actor.Username)
}

// ActorFromIncoming extracts the operator identity of an incoming call, or nil.
func ActorFromIncoming(ctx context.Context) *alarm.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	actor := &alarm.Actor{
		Hostname: first(md.Get(actorHostKey)),
		Username: first(md.Get(actorUserKey)),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
