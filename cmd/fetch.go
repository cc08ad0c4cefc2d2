package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilifeed/internal/bilibili"
	"bilifeed/internal/credential"
	"bilifeed/internal/model"
	"bilifeed/internal/redisclient"
	"bilifeed/internal/rss"
	"bilifeed/internal/storage"

	"github.com/spf13/cobra"
)

var (
	fetchVideo          bool
	fetchShowEmoji      bool
	fetchDisableEmbed   bool
	fetchDisplayArticle bool
)

// fetchCmd fetches and normalizes one account's followings feed and prints
// the RSS document to stdout.
var fetchCmd = &cobra.Command{
	Use:   "fetch <uid>",
	Short: "Fetch a followings feed once and print it as RSS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid := args[0]
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		timeout, err := time.ParseDuration(cfg.Bilibili.FetchTimeout)
		if err != nil {
			return err
		}
		client := bilibili.NewClient(cfg.Bilibili.APIBaseURL, cfg.Bilibili.WebAPIBaseURL, cfg.Bilibili.WebBaseURL, timeout)
		creds := credential.Map(cfg.Bilibili.Cookies)
		cache := storage.NewRedisCache(rdb, client, creds)

		cookie, err := creds.Lookup(uid)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		asm := &bilibili.Assembler{
			Metadata: cache,
			Options: bilibili.Options{
				ShowEmoji:      fetchShowEmoji,
				DisableEmbed:   fetchDisableEmbed,
				DisplayArticle: fetchDisplayArticle,
			},
		}

		name, err := cache.Username(ctx, uid)
		if err != nil || name == "" {
			name = uid
		}

		var feed model.Feed
		if fetchVideo {
			entries, err := client.VideoFeed(ctx, uid, cookie)
			if err != nil {
				return err
			}
			items, skipped := asm.VideoItems(uid, entries)
			if skipped > 0 {
				slog.Warn("fetch: skipped entries", "uid", uid, "skipped", skipped)
			}
			feed = model.Feed{
				Title:       "Followed videos of " + name,
				Link:        "https://t.bilibili.com/?tab=8",
				Description: "Followed videos of " + name,
				Items:       items,
			}
		} else {
			entries, err := client.DynamicFeed(ctx, uid, cookie)
			if err != nil {
				return err
			}
			items, skipped := asm.Items(ctx, uid, entries)
			if skipped > 0 {
				slog.Warn("fetch: skipped entries", "uid", uid, "skipped", skipped)
			}
			feed = model.Feed{
				Title:       "Followed dynamics of " + name,
				Link:        "https://t.bilibili.com",
				Description: "Followed dynamics of " + name,
				Items:       items,
			}
		}

		out, err := rss.Render(feed)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchVideo, "video", false, "fetch the video-only feed")
	fetchCmd.Flags().BoolVar(&fetchShowEmoji, "show-emoji", false, "expand emoji tokens into inline images")
	fetchCmd.Flags().BoolVar(&fetchDisableEmbed, "disable-embed", false, "suppress iframe and video embeds")
	fetchCmd.Flags().BoolVar(&fetchDisplayArticle, "display-article", false, "expand column articles to their full body")
	rootCmd.AddCommand(fetchCmd)
}
