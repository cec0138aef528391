// Package client provides admin commands for a running room server
package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/KirkDiggler/room-server/internal/errors"
	adminv1alpha1 "github.com/KirkDiggler/room-server/internal/handlers/admin/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
	jsonOutput bool
)

// ClientCmd is the root command for all admin client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Admin commands for the room server",
	Long:  `Client commands inspect and manage a running room server over its admin gRPC service.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	ClientCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	ClientCmd.AddCommand(listRoomsCmd)
	ClientCmd.AddCommand(getRoomCmd)
	ClientCmd.AddCommand(kickCmd)
	ClientCmd.AddCommand(viewRoomCmd)
}

// createConnection creates a gRPC connection to the server
func createConnection() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return conn, nil
}

// createAdminClient creates an admin service client
func createAdminClient() (adminv1alpha1.AdminServiceClient, func(), error) {
	conn, err := createConnection()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return adminv1alpha1.NewAdminServiceClient(conn), cleanup, nil
}

func printJSON(msg proto.Message) error {
	marshaler := protojson.MarshalOptions{
		Indent:          "  ",
		EmitUnpopulated: false,
	}
	jsonBytes, err := marshaler.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response to JSON: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

// rpcError turns an admin status into a one line message: what failed, the
// server's reason and its error code.
func rpcError(action string, err error) error {
	converted := errors.FromGRPCError(err)
	return fmt.Errorf("failed to %s: %s (%s)", action, errors.GetMessage(converted), errors.GetCode(converted))
}
