package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/room-server/internal/entities"
	"github.com/KirkDiggler/room-server/internal/repositories/items"
)

// danglingEntry is an index member that no longer matches its item
type danglingEntry struct {
	set    string
	member string
	why    string
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning room and inventory item indexes...")

	var dangling []danglingEntry
	var checkedCount int

	for _, pattern := range []string{"room:items:*", "inventory:*"} {
		iter := client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			set := iter.Val()
			members, err := client.SMembers(ctx, set).Result()
			if err != nil {
				fmt.Printf("Error reading %s: %v\n", set, err)
				continue
			}
			for _, member := range members {
				checkedCount++
				if why := checkMember(ctx, client, set, member); why != "" {
					fmt.Printf("✗ %s member %s: %s\n", set, member, why)
					dangling = append(dangling, danglingEntry{set: set, member: member, why: why})
				}
			}
		}
		if err := iter.Err(); err != nil {
			log.Fatal("Error during scan:", err)
		}
	}

	fmt.Printf("\nChecked %d index entries, found %d dangling\n", checkedCount, len(dangling))

	if len(dangling) == 0 {
		fmt.Println("Indexes are consistent!")
		return
	}

	fmt.Print("\nDo you want to REMOVE these index entries? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}
	for _, d := range dangling {
		if err := client.SRem(ctx, d.set, d.member).Err(); err != nil {
			fmt.Printf("Failed to remove %s from %s: %v\n", d.member, d.set, err)
		} else {
			fmt.Printf("Removed %s from %s\n", d.member, d.set)
		}
	}
	fmt.Println("\nCleanup complete!")
}

// checkMember reports why member does not belong in set, or "" when it does
func checkMember(ctx context.Context, client *redis.Client, set, member string) string {
	id, err := strconv.Atoi(member)
	if err != nil {
		return "not an item id"
	}

	data, err := client.Get(ctx, items.ItemKey(id)).Result()
	if err == redis.Nil {
		return "item is missing"
	}
	if err != nil {
		return "unreadable: " + err.Error()
	}

	var row entities.ItemRow
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return "corrupted JSON"
	}

	switch {
	case strings.HasPrefix(set, "room:items:"):
		if set != items.RoomItemsKey(row.RoomID) {
			return fmt.Sprintf("item is in room %d", row.RoomID)
		}
	case row.RoomID != 0:
		return fmt.Sprintf("item is placed in room %d", row.RoomID)
	case set != items.InventoryKey(row.OwnerID):
		return fmt.Sprintf("item belongs to user %d", row.OwnerID)
	}
	return ""
}
