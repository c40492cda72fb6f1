package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/kvcache"
)

var errNotFound = errors.New("key not found")

func getCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a value",
		Args:  cobra.ExactArgs(1),
		RunE: run(f, func(cmd *cobra.Command, s *session, args []string) error {
			v, ok, err := s.cache.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", errNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}),
	}
}

func setCmd(f *rootFlags) *cobra.Command {
	var ttl string
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value",
		Long:  "Store a value. --ttl takes seconds; 0, negative or non-numeric values skip the write.",
		Args:  cobra.ExactArgs(2),
		RunE: run(f, func(cmd *cobra.Command, s *session, args []string) error {
			t := kvcache.ParseTTL(ttl)
			if _, err := s.cache.Set(cmd.Context(), args[0], args[1], t); err != nil {
				return err
			}
			if !t.Writable() {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped (ttl %s)\n", t)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		}),
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", "expiry in seconds (empty = none)")
	return cmd
}

func delCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY...",
		Short: "Delete keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(f, func(cmd *cobra.Command, s *session, args []string) error {
			n, err := s.cache.Delete(cmd.Context(), args...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		}),
	}
}

func keysCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [PATTERN]",
		Short: "List keys matching a glob (default *)",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(f, func(cmd *cobra.Command, s *session, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			keys, err := s.cache.Keys(cmd.Context(), pattern)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		}),
	}
}

func flushCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Delete every key of the namespace",
		Args:  cobra.NoArgs,
		RunE: run(f, func(cmd *cobra.Command, s *session, _ []string) error {
			return s.cache.DeleteAll(cmd.Context())
		}),
	}
}

func statusCmd(f *rootFlags) *cobra.Command {
	var warm bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print pool status as JSON",
		Args:  cobra.NoArgs,
		RunE: run(f, func(cmd *cobra.Command, s *session, _ []string) error {
			if warm {
				if err := s.cache.Warm(cmd.Context()); err != nil {
					return err
				}
			}
			return printJSON(cmd, s.cache.Status())
		}),
	}
	cmd.Flags().BoolVar(&warm, "warm", false, "dial the reserved connections first")
	return cmd
}

func pingCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Round-trip one pooled connection",
		Args:  cobra.NoArgs,
		RunE: run(f, func(cmd *cobra.Command, s *session, _ []string) error {
			if err := s.cache.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PONG")
			return nil
		}),
	}
}
