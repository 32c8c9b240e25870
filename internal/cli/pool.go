package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solkeen/marinade-anchor/internal/core/state"
	"github.com/solkeen/marinade-anchor/internal/storage/keyValueDb/pebble"
	"github.com/solkeen/marinade-anchor/internal/storage/statestore"
)

// poolCmd inspects the stored pool state.
var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Show the liquidity pool state",
	RunE:  runPool,
}

func init() {
	rootCmd.AddCommand(poolCmd)
}

func runPool(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	st, err := state.Load(store)
	if err != nil {
		return fmt.Errorf("loading protocol state: %w", err)
	}

	fmt.Printf("state address:         %s\n", st.Address)
	fmt.Printf("msol mint:             %s\n", st.MsolMint)
	fmt.Printf("virtual staked:        %d lamports\n", st.TotalVirtualStakedLamports)
	fmt.Printf("msol supply:           %d\n", st.MsolSupply)
	fmt.Printf("min withdraw:          %d lamports\n", st.MinWithdraw)
	fmt.Printf("rent-exempt floor:     %d lamports\n", st.RentExemptForTokenAcc)
	fmt.Println()
	fmt.Printf("lp mint:               %s\n", st.LiqPool.LPMint)
	fmt.Printf("tracked lp supply:     %d\n", st.LiqPool.LPSupply)
	fmt.Printf("sol leg:               %s\n", st.LiqPool.SolLeg)
	fmt.Printf("msol leg:              %s\n", st.LiqPool.MsolLeg)
	fmt.Printf("sol leg authority:     %s\n", st.SolLegAuthority().Address())
	fmt.Printf("msol leg authority:    %s\n", st.MsolLegAuthority().Address())
	return nil
}
