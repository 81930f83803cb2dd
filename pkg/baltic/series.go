package baltic

import (
	"context"
	"fmt"

	"github.com/sarunasign/btd/pkg/types"
)

// Series describes one entry in the export catalog: the upstream feed id, the
// grouping depth its column metadata calls for, and whether the normalization
// transform is applied after unraveling.
type Series struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Depth       int    `json:"depth"`
	Normalized  bool   `json:"normalized"`
	Description string `json:"description"`
}

// catalog is the full set of supported series. Each façade method below is a
// thin lookup into this table; keeping it data-driven means the fetch/unravel
// path can't drift between series.
var catalog = []Series{
	{Name: "procured_reserve_prices", ID: "price_procured_reserves", Depth: 3,
		Description: "TSO procured balancing reserve prices (EUR/MW)"},
	{Name: "cross_border_marginal_prices", ID: "cross_border_marginal_price", Depth: 3,
		Description: "cross border marginal prices (EUR/MWh)"},
	{Name: "imbalance_volumes", ID: "imbalance_volumes_v2", Depth: 1,
		Description: "imbalance volumes for each country (MWh)"},
	{Name: "activated_afrr_volumes", ID: "activations_afrr", Depth: 2,
		Description: "activated aFRR energy (MWh)"},
	{Name: "balancing_energy_prices", ID: "balancing_energy_prices", Depth: 2,
		Description: "balancing energy reference prices (EUR/MWh)"},
	{Name: "current_balancing_state", ID: "current_balancing_state_v2", Depth: 1,
		Description: "imbalance volumes (MW) for each country with 1 minute resolution"},
	{Name: "balancing_direction", ID: "direction_of_balancing_v2", Depth: 1,
		Description: "directions of system balancing (-1/+1)"},
	{Name: "imbalance_prices", ID: "imbalance_prices", Depth: 1,
		Description: "imbalance prices calculated by each Baltic TSO"},
	{Name: "local_marginal_prices", ID: "local_marginal_price", Depth: 2,
		Description: "local marginal prices"},
	{Name: "local_marginal_afrr_prices", ID: "local_marginal_price_afrr", Depth: 2,
		Description: "clearing (marginal) aFRR prices (EUR/MWh)"},
	{Name: "normal_activations_da_volumes", ID: "normal_activations_da_mfrr", Depth: 2,
		Description: "total direct mFRR energy activation volumes"},
	{Name: "normal_activations_sa_volumes", ID: "normal_activations_sa_mfrr", Depth: 2,
		Description: "total scheduled mFRR energy activation volumes"},
	{Name: "normal_activations_total_volumes", ID: "normal_activations_total", Depth: 2,
		Description: "total normal balancing energy activated volumes"},
	{Name: "satisfied_demand", ID: "total_satisfied_demand_for_balancing_purposes", Depth: 2,
		Description: "total satisfied demand for balancing purposes (MWh)"},
	{Name: "satisfied_demand_normalized", ID: "total_satisfied_demand_for_balancing_purposes", Depth: 2,
		Normalized:  true,
		Description: "total satisfied demand for balancing purposes, converted to MW with Baltics total"},
}

var catalogByName = func() map[string]Series {
	m := make(map[string]Series, len(catalog))
	for _, s := range catalog {
		m[s.Name] = s
	}
	return m
}()

// Catalog returns the supported series in a stable order.
func Catalog() []Series {
	out := make([]Series, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by name.
func Lookup(name string) (Series, bool) {
	s, ok := catalogByName[name]
	return s, ok
}

// Series fetches and unravels the named catalog entry.
func (c *Client) Series(ctx context.Context, name string) (*types.Frame, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown series: %s", name)
	}
	return c.run(ctx, s)
}

// run is the single execution path shared by every series.
func (c *Client) run(ctx context.Context, s Series) (*types.Frame, error) {
	raw, err := c.fetch(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	frame, err := Unravel(raw, s.Depth)
	if err != nil {
		return nil, err
	}
	if s.Normalized {
		normalizeDemand(frame)
	}
	return frame, nil
}

func mustLookup(name string) Series {
	s, ok := Lookup(name)
	if !ok {
		panic(fmt.Errorf("series %s not in catalog", name))
	}
	return s
}

// ProcuredReservePrices returns TSO procured balancing reserve prices (EUR/MW).
func (c *Client) ProcuredReservePrices(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("procured_reserve_prices"))
}

// CrossBorderMarginalPrices returns cross border marginal prices (EUR/MWh).
func (c *Client) CrossBorderMarginalPrices(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("cross_border_marginal_prices"))
}

// ImbalanceVolumes returns imbalance volumes for each country (MWh).
func (c *Client) ImbalanceVolumes(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("imbalance_volumes"))
}

// ActivatedAFRRVolumes returns activated aFRR energy (MWh).
func (c *Client) ActivatedAFRRVolumes(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("activated_afrr_volumes"))
}

// BalancingEnergyPrices returns balancing energy reference prices (EUR/MWh).
func (c *Client) BalancingEnergyPrices(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("balancing_energy_prices"))
}

// CurrentBalancingState returns per-country imbalance volumes (MW) at 1 minute resolution.
func (c *Client) CurrentBalancingState(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("current_balancing_state"))
}

// BalancingDirection returns the directions of system balancing (-1/+1).
func (c *Client) BalancingDirection(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("balancing_direction"))
}

// ImbalancePrices returns imbalance prices calculated by each Baltic TSO.
func (c *Client) ImbalancePrices(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("imbalance_prices"))
}

// LocalMarginalPrices returns local marginal prices.
func (c *Client) LocalMarginalPrices(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("local_marginal_prices"))
}

// LocalMarginalAFRRPrices returns clearing (marginal) aFRR prices (EUR/MWh).
func (c *Client) LocalMarginalAFRRPrices(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("local_marginal_afrr_prices"))
}

// NormalActivationsDAVolumes returns total direct mFRR energy activation volumes.
func (c *Client) NormalActivationsDAVolumes(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("normal_activations_da_volumes"))
}

// NormalActivationsSAVolumes returns total scheduled mFRR energy activation volumes.
func (c *Client) NormalActivationsSAVolumes(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("normal_activations_sa_volumes"))
}

// NormalActivationsTotalVolumes returns total normal balancing energy activated volumes.
func (c *Client) NormalActivationsTotalVolumes(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("normal_activations_total_volumes"))
}

// SatisfiedDemand returns total satisfied demand for balancing purposes (MWh).
func (c *Client) SatisfiedDemand(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("satisfied_demand"))
}

// SatisfiedDemandNormalized returns total satisfied demand for balancing
// purposes with downward activations negated, incomplete rows dropped, a
// Baltics_net total column appended and 15-minute energies converted to MW.
func (c *Client) SatisfiedDemandNormalized(ctx context.Context) (*types.Frame, error) {
	return c.run(ctx, mustLookup("satisfied_demand_normalized"))
}
