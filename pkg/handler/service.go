package handler

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/streamkit/tazos-engine/pkg/common"
	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/leaderboard"
)

const ServiceName = "tazos.v1.CommandService"

// CommandServiceServer is the gRPC surface the chat bot calls.
//
// Execute takes {user, command, args[], moderator} and returns {status, text}.
// ChatMessage takes {user, text, moderator} and returns {replies: [{status, text}]}.
// Leaderboard takes the entry count and returns {text, entries[]}.
type CommandServiceServer interface {
	Execute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChatMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Leaderboard(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
}

// CommandService implements CommandServiceServer on a Dispatcher.
type CommandService struct {
	dispatcher *Dispatcher
	board      *leaderboard.Board
}

func NewCommandService(dispatcher *Dispatcher, board *leaderboard.Board) *CommandService {
	return &CommandService{dispatcher: dispatcher, board: board}
}

func (s *CommandService) Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	user := fields["user"].GetStringValue()
	command := fields["command"].GetStringValue()
	if user == "" || command == "" {
		return nil, status.Error(codes.InvalidArgument, "user and command are required")
	}
	var args []string
	for _, v := range fields["args"].GetListValue().GetValues() {
		args = append(args, v.GetStringValue())
	}

	reply := s.dispatcher.Execute(ctx, user, command, args, fields["moderator"].GetBoolValue())
	return structpb.NewStruct(replyMap(reply))
}

func (s *CommandService) ChatMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	msg := Message{
		User:      fields["user"].GetStringValue(),
		Text:      fields["text"].GetStringValue(),
		Moderator: fields["moderator"].GetBoolValue(),
	}
	if msg.User == "" {
		return nil, status.Error(codes.InvalidArgument, "user is required")
	}

	replies := s.dispatcher.ChatMessage(ctx, msg)
	list := make([]interface{}, len(replies))
	for i, r := range replies {
		list[i] = replyMap(r)
	}
	return structpb.NewStruct(map[string]interface{}{"replies": list})
}

func (s *CommandService) Leaderboard(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.Struct, error) {
	scope := common.NewScope(ctx, "CommandService.Leaderboard")
	defer scope.Finish()

	n := int(in.GetValue())
	if n <= 0 {
		n = defaultTop
	}
	entries, err := s.board.Top(scope.Ctx, n, nil)
	if err != nil {
		scope.TraceError(err)
		logrus.Errorf("leaderboard failed: %v", err)
		return nil, status.Errorf(codes.Unavailable, "leaderboard unavailable: %v", err)
	}

	list := make([]interface{}, len(entries))
	for i, e := range entries {
		list[i] = map[string]interface{}{
			"rank":    e.Rank,
			"user":    e.User,
			"display": e.Display,
			"balance": e.Balance,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"text":    leaderboard.Format(entries),
		"entries": list,
	})
}

func replyMap(r game.Reply) map[string]interface{} {
	return map[string]interface{}{"status": r.Status.String(), "text": r.Text}
}

// RegisterCommandServiceServer attaches srv to a gRPC server.
func RegisterCommandServiceServer(s grpc.ServiceRegistrar, srv CommandServiceServer) {
	s.RegisterService(&CommandServiceDesc, srv)
}

var CommandServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
		{MethodName: "ChatMessage", Handler: chatMessageHandler},
		{MethodName: "Leaderboard", Handler: leaderboardHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tazos/v1/command.proto",
}

func executeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Execute"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).Execute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func chatMessageHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).ChatMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ChatMessage"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).ChatMessage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func leaderboardHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).Leaderboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Leaderboard"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).Leaderboard(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}
