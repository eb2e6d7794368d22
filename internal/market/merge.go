package market

// Merge combines an incoming partial document with an existing one at module
// granularity. Every module present in incoming replaces the existing module
// wholesale; absent modules are carried over. MarketShare belongs to the
// market_sizing module but is only replaced when incoming carries it
// explicitly. Neither input is modified.
func Merge(existing, incoming *MarketData) *MarketData {
	if existing == nil && incoming == nil {
		return nil
	}
	out := existing.Clone()
	if out == nil {
		out = &MarketData{}
	}
	if incoming == nil {
		return out
	}
	in := incoming.Clone()

	if in.SchemaVersion != "" {
		out.SchemaVersion = in.SchemaVersion
	}
	if in.Meta != nil {
		out.Meta = in.Meta
	}
	if in.MarketSizing != nil {
		out.MarketSizing = in.MarketSizing
	}
	if in.MarketShare != nil {
		out.MarketShare = in.MarketShare
	}
	if in.CompetitiveLandscape != nil {
		out.CompetitiveLandscape = in.CompetitiveLandscape
	}
	if in.CustomerAnalysis != nil {
		out.CustomerAnalysis = in.CustomerAnalysis
	}
	if in.StrategicPlanning != nil {
		out.StrategicPlanning = in.StrategicPlanning
	}
	return out
}

// AvailableModules returns the identifiers of the modules present in md, in
// document order. MarketShare alone marks market_sizing as present.
func AvailableModules(md *MarketData) []string {
	if md == nil {
		return nil
	}
	var modules []string
	if md.MarketSizing != nil || md.MarketShare != nil {
		modules = append(modules, ModuleMarketSizing)
	}
	if md.CompetitiveLandscape != nil {
		modules = append(modules, ModuleCompetitiveLandscape)
	}
	if md.CustomerAnalysis != nil {
		modules = append(modules, ModuleCustomerAnalysis)
	}
	if md.StrategicPlanning != nil {
		modules = append(modules, ModuleStrategicPlanning)
	}
	return modules
}

// IsKnownModule reports whether module is a valid module identifier.
func IsKnownModule(module string) bool {
	for _, m := range Modules {
		if m == module {
			return true
		}
	}
	return false
}
