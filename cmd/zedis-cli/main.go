package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"zedis-go/libzedis"
	"zedis-go/libzedis/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to TOML config file")
		serverAddr = flag.String("server", "", "Server address (overrides config)")
		network    = flag.String("network", "", "Network: tcp, unix or ws (overrides config)")
		verbose    = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *serverAddr != "" {
		cfg.Address = *serverAddr
	}
	if *network != "" {
		cfg.Network = *network
	}

	level := parseLevel(cfg.LogLevel)
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	opts := cfg.ClientOptions()
	opts.Logger = &logger

	client, err := libzedis.Dial(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect failed")
	}
	defer client.Close()

	fmt.Printf("Connected to %s (%s, RESP%d)\n", cfg.Address, cfg.Network, client.Proto())
	fmt.Println("Sorted-set commands only; type 'help' for a list, 'quit' to exit.")

	runREPL(client)
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func runREPL(client *libzedis.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("zedis> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		verb := strings.ToUpper(fields[0])
		args := fields[1:]

		switch verb {
		case "QUIT", "EXIT":
			return
		case "HELP":
			printHelp()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		out, err := dispatch(ctx, client, verb, args)
		cancel()

		switch {
		case err == nil:
			fmt.Println(out)
		case errors.Is(err, libzedis.ErrClosed):
			fmt.Fprintln(os.Stderr, "connection lost:", err)
			return
		default:
			fmt.Fprintln(os.Stderr, "(error)", err)
		}
	}
}

func dispatch(ctx context.Context, c *libzedis.Client, verb string, args []string) (string, error) {
	switch verb {
	case "ZADD":
		if len(args) < 3 || len(args)%2 == 0 {
			return "", fmt.Errorf("usage: ZADD key score member [score member ...]")
		}
		pairs, err := parsePairs(args[1:])
		if err != nil {
			return "", err
		}
		n, err := c.ZAdd(ctx, args[0], libzedis.ZPairs(pairs...), nil)
		if err != nil {
			return "", err
		}
		return fmtOptInt(n), nil
	case "ZINCRBY":
		if len(args) != 3 {
			return "", fmt.Errorf("usage: ZINCRBY key delta member")
		}
		delta, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", err
		}
		return c.ZIncrBy(ctx, args[0], delta, args[2])
	case "ZSCORE":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: ZSCORE key member")
		}
		s, err := c.ZScore(ctx, args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmtOptString(s), nil
	case "ZCARD":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: ZCARD key")
		}
		n, err := c.ZCard(ctx, args[0])
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case "ZRANK", "ZREVRANK":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: %s key member", verb)
		}
		fn := c.ZRank
		if verb == "ZREVRANK" {
			fn = c.ZRevRank
		}
		n, err := fn(ctx, args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmtOptInt(n), nil
	case "ZRANGE", "ZREVRANGE":
		return rankRange(ctx, c, verb, args)
	case "ZRANGEBYSCORE", "ZREVRANGEBYSCORE":
		return scoreRange(ctx, c, verb, args)
	case "ZRANGEBYLEX", "ZREVRANGEBYLEX":
		return lexRange(ctx, c, verb, args)
	case "ZREM":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: ZREM key member [member ...]")
		}
		n, err := c.ZRem(ctx, args[0], args[1:]...)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case "ZCOUNT":
		if len(args) != 3 {
			return "", fmt.Errorf("usage: ZCOUNT key min max")
		}
		min, max, err := parseScoreBounds(args[1], args[2])
		if err != nil {
			return "", err
		}
		n, err := c.ZCount(ctx, args[0], min, max)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case "ZPOPMIN", "ZPOPMAX":
		if len(args) < 1 || len(args) > 2 {
			return "", fmt.Errorf("usage: %s key [count]", verb)
		}
		var count []int64
		if len(args) == 2 {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return "", err
			}
			count = append(count, n)
		}
		fn := c.ZPopMin
		if verb == "ZPOPMAX" {
			fn = c.ZPopMax
		}
		items, err := fn(ctx, args[0], count...)
		if err != nil {
			return "", err
		}
		return fmtList(items), nil
	case "BZPOPMIN", "BZPOPMAX":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: %s key [key ...] timeout", verb)
		}
		secs, err := strconv.ParseFloat(args[len(args)-1], 64)
		if err != nil {
			return "", err
		}
		fn := c.BZPopMin
		if verb == "BZPOPMAX" {
			fn = c.BZPopMax
		}
		entry, err := fn(ctx, time.Duration(secs*float64(time.Second)), args[:len(args)-1]...)
		if err != nil {
			return "", err
		}
		if entry == nil {
			return "(nil)", nil
		}
		return fmtList([]string{entry.Key, entry.Member, entry.Score}), nil
	case "ZSCAN":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: ZSCAN key cursor")
		}
		next, items, err := c.ZScan(ctx, args[0], args[1], nil)
		if err != nil {
			return "", err
		}
		return "cursor " + next + "\n" + fmtList(items), nil
	case "ZINTERSTORE", "ZUNIONSTORE":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: %s dest key [key ...]", verb)
		}
		fn := c.ZInterStore
		if verb == "ZUNIONSTORE" {
			fn = c.ZUnionStore
		}
		n, err := fn(ctx, args[0], libzedis.Keys(args[1:]...), nil)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	}
	return "", fmt.Errorf("unknown command %q (sorted-set commands only)", verb)
}

func rankRange(ctx context.Context, c *libzedis.Client, verb string, args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("usage: %s key start stop [WITHSCORES]", verb)
	}
	start, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", err
	}
	stop, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "", err
	}
	opts := &libzedis.ZRangeOptions{WithScores: hasFlag(args[3:], "WITHSCORES")}
	fn := c.ZRange
	if verb == "ZREVRANGE" {
		fn = c.ZRevRange
	}
	items, err := fn(ctx, args[0], start, stop, opts)
	if err != nil {
		return "", err
	}
	return fmtList(items), nil
}

func scoreRange(ctx context.Context, c *libzedis.Client, verb string, args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("usage: %s key min max [WITHSCORES]", verb)
	}
	first, second, err := parseScoreBounds(args[1], args[2])
	if err != nil {
		return "", err
	}
	opts := &libzedis.ZRangeByScoreOptions{WithScores: hasFlag(args[3:], "WITHSCORES")}
	var items []string
	if verb == "ZREVRANGEBYSCORE" {
		items, err = c.ZRevRangeByScore(ctx, args[0], first, second, opts)
	} else {
		items, err = c.ZRangeByScore(ctx, args[0], first, second, opts)
	}
	if err != nil {
		return "", err
	}
	return fmtList(items), nil
}

func lexRange(ctx context.Context, c *libzedis.Client, verb string, args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("usage: %s key min max", verb)
	}
	first, err := libzedis.ParseLexBound(args[1])
	if err != nil {
		return "", err
	}
	second, err := libzedis.ParseLexBound(args[2])
	if err != nil {
		return "", err
	}
	var items []string
	if verb == "ZREVRANGEBYLEX" {
		items, err = c.ZRevRangeByLex(ctx, args[0], first, second)
	} else {
		items, err = c.ZRangeByLex(ctx, args[0], first, second)
	}
	if err != nil {
		return "", err
	}
	return fmtList(items), nil
}

func parsePairs(args []string) ([]libzedis.MemberScore, error) {
	pairs := make([]libzedis.MemberScore, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		score, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad score %q", args[i])
		}
		pairs = append(pairs, libzedis.MemberScore{Member: args[i+1], Score: score})
	}
	return pairs, nil
}

func parseScoreBounds(a, b string) (libzedis.ScoreBound, libzedis.ScoreBound, error) {
	first, err := libzedis.ParseScoreBound(a)
	if err != nil {
		return libzedis.ScoreBound{}, libzedis.ScoreBound{}, err
	}
	second, err := libzedis.ParseScoreBound(b)
	if err != nil {
		return libzedis.ScoreBound{}, libzedis.ScoreBound{}, err
	}
	return first, second, nil
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

func fmtList(items []string) string {
	if len(items) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d) %s", i+1, item)
		if i != len(items)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func fmtOptInt(n *int64) string {
	if n == nil {
		return "(nil)"
	}
	return strconv.FormatInt(*n, 10)
}

func fmtOptString(s *string) string {
	if s == nil {
		return "(nil)"
	}
	return *s
}

func printHelp() {
	fmt.Println(`Commands:
  ZADD key score member [score member ...]
  ZINCRBY key delta member
  ZSCORE key member            ZCARD key
  ZRANK key member             ZREVRANK key member
  ZRANGE key start stop [WITHSCORES]
  ZREVRANGE key start stop [WITHSCORES]
  ZRANGEBYSCORE key min max [WITHSCORES]
  ZREVRANGEBYSCORE key max min [WITHSCORES]
  ZRANGEBYLEX key min max      ZREVRANGEBYLEX key max min
  ZREM key member [member ...]
  ZCOUNT key min max
  ZPOPMIN key [count]          ZPOPMAX key [count]
  BZPOPMIN key [key ...] timeout
  BZPOPMAX key [key ...] timeout
  ZSCAN key cursor
  ZINTERSTORE dest key [key ...]
  ZUNIONSTORE dest key [key ...]
  quit`)
}
