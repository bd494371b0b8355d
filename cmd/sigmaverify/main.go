package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/exprs"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/model/externalapi"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/processes/scriptverifier"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/hashes"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
	"github.com/thub1271/sigmastate-interpreter/infrastructure/logger"
	"github.com/thub1271/sigmastate-interpreter/util/panics"
	"github.com/thub1271/sigmastate-interpreter/version"
)

const reducerCacheCapacity = 1000

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}
	initLog(cfg)
	defer logger.BackendLog.Close()

	log.Infof("Version %s", version.Version())

	treeBytes := decodeHexArg("--tree", cfg.Tree)
	proofBytes := decodeHexArg("--proof", cfg.Proof)
	messageBytes := decodeHexArg("--message", cfg.Message)

	registry := validation.NewRegistry()
	tree := exprs.ParseErgoTree(treeBytes, registry)
	ctx, err := buildContext(cfg, registry, treeBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building the verification context: %s\n", err)
		os.Exit(1)
	}

	verifier := scriptverifier.New(exprs.NewEvaluator(), reducerCacheCapacity)
	accepted, cost, err := verifier.Verify(tree, ctx, proofBytes, messageBytes)
	if err != nil {
		log.Errorf("Verification failed: %s", err)
		fmt.Printf("REJECT (%s)\n", err)
		os.Exit(1)
	}
	if !accepted {
		fmt.Printf("REJECT cost=%d\n", cost)
		os.Exit(1)
	}
	fmt.Printf("ACCEPT cost=%d\n", cost)
}

// buildContext assembles a minimal context around the script being checked:
// one spent box guarded by it, an empty spending transaction, no headers.
func buildContext(cfg *configFlags, registry *validation.Registry,
	treeBytes []byte) (*externalapi.VerificationContext, error) {

	digestWriter := hashes.NewTreeDigestHashWriter()
	digestWriter.InfallibleWrite(treeBytes)
	self := &externalapi.DomainBox{
		ID:             digestWriter.Finalize(),
		ScriptBytes:    treeBytes,
		CreationHeight: cfg.Height,
	}
	return externalapi.NewVerificationContext(cfg.Height, nil, nil, nil,
		[]*externalapi.DomainBox{self}, nil, &externalapi.DomainTransaction{}, 0,
		externalapi.ContextExtension{}, registry, cfg.CostLimit,
		constants.InterpreterInitCost, cfg.ActivatedVersion)
}

func decodeHexArg(name, value string) []byte {
	if value == "" {
		return nil
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s is not valid hex: %s\n", name, err)
		os.Exit(1)
	}
	return decoded
}
