package handler

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/streamkit/tazos-engine/pkg/leaderboard"
)

func setupService(t *testing.T) (*CommandService, *grpc.ClientConn) {
	t.Helper()
	d, hs := setupDispatcher(t)
	svc := NewCommandService(d, leaderboard.New(hs.Deps.Ledger, hs.Deps.Names, nil))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCommandServiceServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return svc, conn
}

func TestCommandService_ExecuteOverGRPC(t *testing.T) {
	_, conn := setupService(t)

	in, _ := structpb.NewStruct(map[string]interface{}{
		"user":    "Alice",
		"command": "balance",
		"args":    []interface{}{},
	})
	out := new(structpb.Struct)
	if err := conn.Invoke(context.Background(), "/"+ServiceName+"/Execute", in, out); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := out.GetFields()["text"].GetStringValue(); got != "💰 Alice has 100 tazos." {
		t.Errorf("text = %q", got)
	}
	if got := out.GetFields()["status"].GetStringValue(); got != "ok" {
		t.Errorf("status = %q", got)
	}
}

func TestCommandService_ExecuteRequiresUser(t *testing.T) {
	svc, _ := setupService(t)
	in, _ := structpb.NewStruct(map[string]interface{}{"command": "balance"})

	_, err := svc.Execute(context.Background(), in)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, expected InvalidArgument", status.Code(err))
	}
}

func TestCommandService_Leaderboard(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, u := range []string{"Alice", "Bob"} {
		in, _ := structpb.NewStruct(map[string]interface{}{"user": u, "command": "balance"})
		if _, err := svc.Execute(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	gift, _ := structpb.NewStruct(map[string]interface{}{
		"user": "Alice", "command": "gift", "args": []interface{}{"bob", "40"},
	})
	if _, err := svc.Execute(ctx, gift); err != nil {
		t.Fatal(err)
	}

	out, err := svc.Leaderboard(ctx, wrapperspb.Int32(2))
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	entries := out.GetFields()["entries"].GetListValue().GetValues()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, expected 2", len(entries))
	}
	first := entries[0].GetStructValue().GetFields()
	if first["user"].GetStringValue() != "bob" || first["balance"].GetNumberValue() != 140 {
		t.Errorf("first entry = %v", first)
	}
	if got := out.GetFields()["text"].GetStringValue(); got != "🏆 1. Bob (140) | 2. Alice (60)" {
		t.Errorf("text = %q", got)
	}
}
