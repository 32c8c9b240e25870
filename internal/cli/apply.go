package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/instruction"
	_ "github.com/solkeen/marinade-anchor/internal/core/instruction/liqpool"
	"github.com/solkeen/marinade-anchor/internal/storage/keyValueDb/pebble"
	"github.com/solkeen/marinade-anchor/internal/storage/statestore"
)

// applyCmd applies one instruction from a JSON file to the stored pool state.
var applyCmd = &cobra.Command{
	Use:   "apply <instruction.json>",
	Short: "Apply an instruction to the pool",
	Long: `Apply one instruction, read from a JSON file, to the persisted pool state.
The file names the instruction type and its parameters, e.g.:

  {"type": 3, "params": {"amount": 100, "lp_mint": "<hex>", ...}}

The instruction either fully succeeds and is committed, or leaves the stored
state untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

// instructionFile is the on-disk form of one instruction.
type instructionFile struct {
	Type   instruction.Type `json:"type"`
	Params json.RawMessage  `json:"params"`
}

// decodeInstruction builds a registered instruction from its JSON form.
func decodeInstruction(data []byte) (instruction.Instruction, error) {
	var f instructionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid instruction file: %w", err)
	}

	instr := instruction.New(f.Type)
	if instr == nil {
		return nil, fmt.Errorf("unknown instruction type %d", uint16(f.Type))
	}
	if len(f.Params) > 0 {
		if err := json.Unmarshal(f.Params, instr); err != nil {
			return nil, fmt.Errorf("invalid %s params: %w", instr.InstrType(), err)
		}
	}
	return instr, nil
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	instr, err := decodeInstruction(data)
	if err != nil {
		return err
	}

	db, err := pebble.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}
	defer db.Close()

	store, err := statestore.New(db, cfg.Database.CacheSize)
	if err != nil {
		return err
	}

	engine := instruction.NewEngine(store, log)
	res, meta := engine.Apply(instr)
	if !res.IsSuccess() {
		return fmt.Errorf("%s failed: %s", instr.InstrType(), res)
	}

	log.Info("instruction applied",
		zap.Stringer("instruction", instr.InstrType()),
		zap.Uint64("sol_out", meta.SolOut),
		zap.Uint64("msol_out", meta.MsolOut),
	)
	fmt.Printf("%s: %s\n", instr.InstrType(), res)
	fmt.Printf("sol out:  %d lamports\n", meta.SolOut)
	fmt.Printf("msol out: %d\n", meta.MsolOut)
	return nil
}
