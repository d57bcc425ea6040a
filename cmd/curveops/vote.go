package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveOps/internal/chain"
	"curveOps/internal/config"
	"curveOps/internal/dao"
	"curveOps/internal/ethplorer"
	"curveOps/internal/ipfs"
)

func newVoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Prepare, simulate and submit Curve DAO votes",
	}

	prepare := &cobra.Command{
		Use:   "prepare",
		Short: "Print the EVM script of a vote without sending anything",
		RunE:  runVotePrepare,
	}
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Pin the description and create the vote on chain",
		RunE:  runVoteSubmit,
	}
	simulate := &cobra.Command{
		Use:   "simulate",
		Short: "Create, pass and execute the vote on a forked node",
		RunE:  runVoteSimulate,
	}

	for _, sub := range []*cobra.Command{prepare, submit, simulate} {
		addCommonFlags(sub, sub != prepare)
		sub.Flags().String("target", "ownership", "DAO target (ownership, parameter, emergency or a configured one)")
		sub.Flags().StringArray("action", nil, "vote action as target:fn(types):arg1,arg2 (repeatable)")
		sub.Flags().String("description", "", "vote description")
		cmd.AddCommand(sub)
	}
	submit.Flags().String("ipfs-api", ipfs.DefaultAPI, "IPFS API endpoint")
	simulate.Flags().String("ipfs-api", ipfs.DefaultAPI, "IPFS API endpoint")
	simulate.Flags().String("ethplorer-api", ethplorer.DefaultAPI, "Ethplorer API endpoint")
	simulate.Flags().String("ethplorer-key", ethplorer.FreeKey, "Ethplorer API key")

	return cmd
}

type voteRequest struct {
	cfg     config.VoteConfig
	target  dao.Target
	actions []dao.Action
	logger  *zap.Logger
}

func loadVoteRequest(cmd *cobra.Command) (voteRequest, error) {
	cfg, err := config.LoadVote(configFile(cmd), cmd.Flags())
	if err != nil {
		return voteRequest{}, err
	}
	targets, err := cfg.DAOTargets()
	if err != nil {
		return voteRequest{}, err
	}
	target, err := dao.LookupTarget(targets, cfg.Target)
	if err != nil {
		return voteRequest{}, err
	}
	if len(cfg.Actions) == 0 {
		return voteRequest{}, fmt.Errorf("at least one action is required")
	}
	actions := make([]dao.Action, 0, len(cfg.Actions))
	for _, raw := range cfg.Actions {
		action, err := dao.ParseAction(raw)
		if err != nil {
			return voteRequest{}, err
		}
		actions = append(actions, action)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return voteRequest{}, err
	}
	return voteRequest{cfg: cfg, target: target, actions: actions, logger: logger}, nil
}

func runVotePrepare(cmd *cobra.Command, _ []string) error {
	req, err := loadVoteRequest(cmd)
	if err != nil {
		return err
	}
	defer req.logger.Sync()

	script, err := dao.PrepareEVMScript(req.target, req.actions)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	sendTo := req.target.Voting
	if req.target.Forwarder != nil {
		if script, err = dao.WrapForwarder(req.target.Voting, script, req.cfg.Description); err != nil {
			return err
		}
		sendTo = *req.target.Forwarder
	}
	fmt.Fprintf(out, "Target: %s\nEVM script: %s\n", sendTo.Hex(), hexutil.Encode(script))
	return nil
}

func runVoteSubmit(cmd *cobra.Command, _ []string) error {
	req, err := loadVoteRequest(cmd)
	if err != nil {
		return err
	}
	defer req.logger.Sync()

	if req.cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if req.cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	if strings.TrimSpace(req.cfg.Description) == "" {
		return fmt.Errorf("description is required")
	}

	ctx, stop := signalContext()
	defer stop()

	chainClient, err := chain.NewClient(ctx, req.cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	sender, err := dao.NewKeySender(chainClient, req.cfg.PrivateKey, req.logger)
	if err != nil {
		return err
	}
	pinner := ipfs.NewClient(req.cfg.IPFSAPI, newHTTPClient(req.cfg.Common, req.logger))
	voter := dao.NewVoter(pinner, req.logger)

	req.logger.Info("submitting vote",
		zap.String("dao", req.target.Name),
		zap.String("from", sender.From().Hex()),
		zap.String("private_key", redact(req.cfg.PrivateKey)),
		zap.Int("actions", len(req.actions)),
	)
	voteID, err := voter.MakeVote(ctx, sender, req.target, req.actions, req.cfg.Description)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Success! Vote ID: %s\n", voteID)
	return nil
}

func runVoteSimulate(cmd *cobra.Command, _ []string) error {
	req, err := loadVoteRequest(cmd)
	if err != nil {
		return err
	}
	defer req.logger.Sync()

	if req.cfg.RPCURL == "" {
		return fmt.Errorf("rpc url of a forked node is required")
	}

	ctx, stop := signalContext()
	defer stop()

	chainClient, err := chain.NewClient(ctx, req.cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	httpClient := newHTTPClient(req.cfg.Common, req.logger)
	voter := dao.NewVoter(ipfs.NewClient(req.cfg.IPFSAPI, httpClient), req.logger)
	holders := ethplorer.NewClient(req.cfg.EthplorerAPI, req.cfg.EthplorerKey, httpClient)

	result, err := voter.Simulate(ctx, chainClient, holders, req.target, req.actions, req.cfg.Description)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vote %s passed and executed with %d voters (%.2f%% support)\n",
		result.VoteID, len(result.Voters), result.Support)
	return nil
}
