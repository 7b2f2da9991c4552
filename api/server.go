package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/janggi-game-server/service"
	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "janggi.admin.v1.Admin"

var ErrNilDirectory = errors.New("directory is required")

// AdminServer is the read-only admin service over the lobby.
type AdminServer interface {
	ListRooms(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListPlayers(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type Server struct {
	directory i.Directory
	logger    general_i.Logger
}

func RegisterNewAdminServer(gsr grpc.ServiceRegistrar, dir i.Directory, logger general_i.Logger) error {
	if dir == nil {
		return ErrNilDirectory
	}
	server := &Server{
		directory: dir,
		logger:    logger,
	}

	gsr.RegisterService(&adminServiceDesc, server)
	return nil
}

func (s *Server) ListRooms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	summaries := s.directory.RoomSummaries()
	rooms := make([]any, 0, len(summaries))
	for _, r := range summaries {
		rooms = append(rooms, map[string]any{
			"title":    r.Title,
			"players":  r.Players,
			"capacity": r.Capacity,
			"inGame":   r.InGame,
			"private":  r.Private,
			"summary":  service.FormatSummary(r),
		})
	}
	out, err := structpb.NewStruct(map[string]any{"rooms": rooms})
	if err != nil {
		s.logger.Error(fmt.Sprintf("encoding room list: %s", err))
		return nil, status.Error(codes.Internal, "encoding room list")
	}
	return out, nil
}

func (s *Server) ListPlayers(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	names := s.directory.Nicknames()
	players := make([]any, len(names))
	for n, name := range names {
		players[n] = name
	}
	out, err := structpb.NewStruct(map[string]any{"players": players})
	if err != nil {
		s.logger.Error(fmt.Sprintf("encoding player list: %s", err))
		return nil, status.Error(codes.Internal, "encoding player list")
	}
	return out, nil
}

var adminServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRooms", Handler: listRoomsHandler},
		{MethodName: "ListPlayers", Handler: listPlayersHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "janggi/admin/v1/admin.proto",
}

func listRoomsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListRooms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListRooms"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).ListRooms(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listPlayersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListPlayers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListPlayers"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).ListPlayers(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// AdminClient calls the admin service.
type AdminClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminClient(cc grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{cc: cc}
}

func (c *AdminClient) ListRooms(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ListRooms", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) ListPlayers(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ListPlayers", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
