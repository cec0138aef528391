package client

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var kickReason string

var listRoomsCmd = &cobra.Command{
	Use:   "list-rooms",
	Short: "List rooms with their occupancy",
	Args:  cobra.NoArgs,
	RunE:  runListRooms,
}

var getRoomCmd = &cobra.Command{
	Use:   "get-room [room-id]",
	Short: "Show a loaded room's live state",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetRoom,
}

var kickCmd = &cobra.Command{
	Use:   "kick [room-id] [unit-id]",
	Short: "Remove a user from a room",
	Args:  cobra.ExactArgs(2),
	RunE:  runKick,
}

func init() {
	kickCmd.Flags().StringVar(&kickReason, "reason", "", "Reason shown to the kicked user")
}

func runListRooms(_ *cobra.Command, _ []string) error {
	client, cleanup, err := createAdminClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ListRooms(ctx, &emptypb.Empty{})
	if err != nil {
		return rpcError("list rooms", err)
	}
	if jsonOutput {
		return printJSON(resp)
	}

	got := resp.AsMap()
	list, _ := got["rooms"].([]interface{})
	fmt.Printf("%-6s %-24s %-6s %-6s %-6s\n", "ID", "NAME", "LIVE", "USERS", "PEAK")
	for _, entry := range list {
		r, _ := entry.(map[string]interface{})
		live := "-"
		if loaded, _ := r["loaded"].(bool); loaded {
			live = "yes"
		}
		fmt.Printf("%-6d %-24s %-6s %-6d %-6d\n", num(r, "id"), str(r, "name"), live, num(r, "users"), num(r, "peak"))
	}
	fmt.Printf("\nGlobal peak: %d\n", num(got, "global_peak"))
	return nil
}

func runGetRoom(_ *cobra.Command, args []string) error {
	resp, err := fetchRoom(args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}

	got := resp.AsMap()
	fmt.Printf("%s (ID: %d, model %s)\n", str(got, "name"), num(got, "id"), str(got, "model"))
	fmt.Printf("Users: %d  Peak: %d  Floor items: %d  Wall items: %d\n",
		num(got, "users"), num(got, "peak"), num(got, "floor_items"), num(got, "wall_items"))

	occupants, _ := got["occupants"].([]interface{})
	if len(occupants) > 0 {
		fmt.Printf("\nOccupants:\n")
	}
	for _, entry := range occupants {
		o, _ := entry.(map[string]interface{})
		fmt.Printf("  #%d %-16s %-5s at %d,%d %s\n",
			num(o, "unit_id"), str(o, "name"), str(o, "type"), num(o, "x"), num(o, "y"), str(o, "status"))
	}
	return nil
}

func runKick(_ *cobra.Command, args []string) error {
	roomID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid room id %q", args[0])
	}
	unitID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid unit id %q", args[1])
	}

	client, cleanup, err := createAdminClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]interface{}{
		"room_id": roomID,
		"unit_id": unitID,
		"reason":  kickReason,
	})
	if err != nil {
		return err
	}

	log.Printf("Kicking unit %d from room %d on %s...", unitID, roomID, serverAddr)
	resp, err := client.KickOccupant(ctx, req)
	if err != nil {
		return rpcError("kick", err)
	}
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Printf("Kicked. %d users left in room %d\n", num(resp.AsMap(), "users"), roomID)
	return nil
}

func fetchRoom(arg string) (*structpb.Struct, error) {
	roomID, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid room id %q", arg)
	}

	client, cleanup, err := createAdminClient()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.GetRoom(ctx, wrapperspb.Int32(int32(roomID)))
	if err != nil {
		return nil, rpcError("get room", err)
	}
	return resp, nil
}

func num(m map[string]interface{}, key string) int {
	f, _ := m[key].(float64)
	return int(f)
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
