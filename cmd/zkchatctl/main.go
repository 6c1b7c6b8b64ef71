// Command zkchatctl builds and verifies STARK proofs over a chat
// message chain. It is the only place in this module that configures a
// structured logger or reads flags/environment — the core packages
// (zk, air, prover, and the root package) stay silent and
// configuration-free so they can be embedded in any host process.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	zkchat "github.com/kysee/zk-chat"
	"github.com/kysee/zk-chat/air"
	"github.com/kysee/zk-chat/prover"
)

var logger zerolog.Logger

func main() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("zkchatctl failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zkchatctl",
		Short:         "Prove and verify tamper-evident chat message chains",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newProveCmd(), newVerifyCmd())
	return root
}

// newProveCmd reads a JSON array of messages, builds their chain trace,
// produces a STARK proof, and writes the gob-encoded proof plus its
// public inputs to disk.
func newProveCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ZKCHATCTL")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove a message chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = v.BindPFlags(cmd.Flags())

			messagesPath := v.GetString("messages")
			proofPath := v.GetString("out")
			pubPath := v.GetString("pub-out")

			messages, err := loadMessages(messagesPath)
			if err != nil {
				return fmt.Errorf("load messages: %w", err)
			}

			opts := prover.DefaultProofOptions()
			if n := v.GetInt("queries"); n > 0 {
				opts.NumQueries = n
			}
			if n := v.GetInt("blowup"); n > 0 {
				opts.BlowupFactor = n
			}

			logger.Info().Int("messages", len(messages)).Int("queries", opts.NumQueries).Msg("proving chain")

			mp := prover.NewMessageProverWithOptions(opts)
			proofBytes, pub, err := mp.ProveWithPublicInputs(messages)
			if err != nil {
				return fmt.Errorf("prove: %w", err)
			}

			if err := os.WriteFile(proofPath, proofBytes, 0o644); err != nil {
				return fmt.Errorf("write proof: %w", err)
			}
			pubBytes, err := json.MarshalIndent(pub, "", "  ")
			if err != nil {
				return fmt.Errorf("encode public inputs: %w", err)
			}
			if err := os.WriteFile(pubPath, pubBytes, 0o644); err != nil {
				return fmt.Errorf("write public inputs: %w", err)
			}

			logger.Info().Str("proof", proofPath).Str("pub", pubPath).Int("bytes", len(proofBytes)).Msg("proof written")
			return nil
		},
	}

	cmd.Flags().String("messages", "", "path to a JSON array of messages")
	cmd.Flags().String("out", "chain.proof", "path to write the gob-encoded proof")
	cmd.Flags().String("pub-out", "chain.pub.json", "path to write the proof's public inputs")
	cmd.Flags().Int("queries", 0, "override the default query count (0 = use default)")
	cmd.Flags().Int("blowup", 0, "override the default blowup factor (0 = use default)")
	_ = cmd.MarkFlagRequired("messages")

	return cmd
}

// newVerifyCmd checks a proof file against a public-inputs file.
func newVerifyCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ZKCHATCTL")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a message chain proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = v.BindPFlags(cmd.Flags())

			proofBytes, err := os.ReadFile(v.GetString("proof"))
			if err != nil {
				return fmt.Errorf("read proof: %w", err)
			}
			pubBytes, err := os.ReadFile(v.GetString("pub"))
			if err != nil {
				return fmt.Errorf("read public inputs: %w", err)
			}

			var pub air.PublicInputs
			if err := json.Unmarshal(pubBytes, &pub); err != nil {
				return fmt.Errorf("decode public inputs: %w", err)
			}

			if err := prover.VerifyProof(proofBytes, pub); err != nil {
				logger.Error().Err(err).Msg("proof rejected")
				return err
			}

			logger.Info().Uint64("messages", pub.MessageCount).Msg("proof accepted")
			return nil
		},
	}

	cmd.Flags().String("proof", "chain.proof", "path to the gob-encoded proof")
	cmd.Flags().String("pub", "chain.pub.json", "path to the proof's public inputs")

	return cmd
}

func loadMessages(path string) ([]zkchat.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var messages []zkchat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}
