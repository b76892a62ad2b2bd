// Package main provides the entry point for the regionsync server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/regionsync/regionsync/internal/config"
	"github.com/regionsync/regionsync/internal/inventory"
	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/machine"
	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/replicator"
	"github.com/regionsync/regionsync/internal/secret"
	"github.com/regionsync/regionsync/internal/server"
	"github.com/regionsync/regionsync/internal/service"
	"github.com/regionsync/regionsync/internal/store"
)

var (
	cfgFile string
	version = "0.3.1"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "regionsync",
	Short:   "regionsync - Cross-Region Replication Portal",
	Long:    `regionsync is the backend of the disaster recovery portal that replicates AWS resources between regions.`,
	Version: version,
	RunE:    run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./regionsync-config.env)")

	flags := []struct {
		name, usage, defaultValue string
	}{
		{"listen-addr", "HTTP listen address", ":8080"},
		{"region", "AWS region of the portal's own resources", ""},
		{"store-backend", "Project store backend (dynamodb or memory)", "dynamodb"},
		{"project-table", "DynamoDB table holding projects", "DRPProject"},
		{"watch-table", "DynamoDB table holding VPC watch records", "DRPVpcWatch"},
		{"secret-prefix", "Prefix of the portal's Secrets Manager entries", "drp"},
		{"sync-timeout", "Timeout for synchronous workflow executions", "10m"},
		{"run-timeout", "Timeout for awaited background replication workflows", "24h"},
		{"poll-interval", "Poll interval for workflow executions", "3s"},
		{"create-vpc-project-function", "Lambda function creating VPC projects", "DRPVpcCreateVpcProject"},
		{"delete-vpc-function", "Lambda function deleting replicated VPCs", "DRPVpcDeleteVpc"},
		{"check-watch-ready-function", "Lambda function probing continuous-capture readiness", "DRPVpcCheckWatchReady"},
		{"log-file", "Log file path (stderr only when empty)", ""},
	}
	for _, f := range flags {
		rootCmd.Flags().String(f.name, f.defaultValue, f.usage)
	}

	rootCmd.Flags().Int("worker-pool", 8, "Number of background replication workers")
	rootCmd.Flags().Bool("debug", false, "Enable debug logging")

	bindings := map[string]string{
		"LISTEN_ADDR":                 "listen-addr",
		"REGION":                      "region",
		"STORE_BACKEND":               "store-backend",
		"PROJECT_TABLE":               "project-table",
		"WATCH_TABLE":                 "watch-table",
		"SECRET_PREFIX":               "secret-prefix",
		"WORKER_POOL":                 "worker-pool",
		"SYNC_TIMEOUT":                "sync-timeout",
		"RUN_TIMEOUT":                 "run-timeout",
		"POLL_INTERVAL":               "poll-interval",
		"CREATE_VPC_PROJECT_FUNCTION": "create-vpc-project-function",
		"DELETE_VPC_FUNCTION":         "delete-vpc-function",
		"CHECK_WATCH_READY_FUNCTION":  "check-watch-ready-function",
		"LOG_FILE":                    "log-file",
		"DEBUG":                       "debug",
	}
	for env, flag := range bindings {
		if err := viper.BindPFlag(env, rootCmd.Flags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind flag %s to env %s: %v\n", flag, env, err)
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("regionsync-config")
		viper.SetConfigType("env")
	}
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log := logger.New(cfg.Debug)
	if logFile := viper.GetString("LOG_FILE"); logFile != "" {
		log, err = logger.NewWithFile(cfg.Debug, logFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	defer log.Close()

	log.Infof("regionsync version %s", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	var projectStore project.Store
	switch cfg.StoreBackend {
	case "memory":
		projectStore = store.NewMemory()
	default:
		projectStore = store.NewDynamo(dynamoClient, cfg.ProjectTable)
	}
	watch := store.NewWatch(dynamoClient, cfg.WatchTable)

	runner := machine.NewRunner(sfn.NewFromConfig(awsCfg), log, cfg.PollInterval, cfg.SyncTimeout, cfg.RunTimeout)
	invoker := machine.NewInvoker(lambda.NewFromConfig(awsCfg), log)
	secrets := secret.NewManager(secretsmanager.NewFromConfig(awsCfg), cfg.SecretPrefix)

	factory := inventory.NewFactory(awsCfg)
	sides := &replicator.SideInventory{Factory: factory, Secrets: secrets}
	prober := service.NewProber(invoker, cfg.CheckWatchReadyFunction)

	kinds := replicator.NewRegistry()
	err = kinds.Register(
		replicator.NewS3Kind(sides),
		replicator.NewDynamoKind(sides),
		replicator.NewVpcKind(sides, prober),
		replicator.NewDbDumpKind(project.ComponentDbDumpMySql, sides),
		replicator.NewDbDumpKind(project.ComponentDbDumpOracle, sides),
		replicator.NewDbReplicaKind(sides),
	)
	if err != nil {
		return fmt.Errorf("failed to register kind handlers: %w", err)
	}

	pool := replicator.NewPool(cfg.WorkerPool)
	defer pool.Close()
	orch := replicator.New(projectStore, runner, kinds, pool, log)

	projects := service.NewProjects(projectStore, orch, secrets, log)
	projects.RegisterHooks(project.ComponentVPC, service.NewVpcHooks(invoker, watch, projectStore, service.VpcFunctions{
		CreateProject: cfg.CreateVpcProjectFunction,
		DeleteVpc:     cfg.DeleteVpcFunction,
		WatchReady:    cfg.CheckWatchReadyFunction,
	}, log))
	dbHooks := service.NewDbDumpHooks(secrets)
	projects.RegisterHooks(project.ComponentDbDumpMySql, dbHooks)
	projects.RegisterHooks(project.ComponentDbDumpOracle, dbHooks)

	dbdump := service.NewDbDump(projectStore, orch, orch, secrets)
	catalog := service.NewCatalog(projectStore, factory, secrets)

	srv := server.New(cfg.ListenAddr, projects, dbdump, catalog, secrets, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
