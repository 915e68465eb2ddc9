// Package names bridges the geographic dataset vocabulary (English feature
// names) and the trade dataset vocabulary (French labels with a "__" prefix).
package names

// Resolver maps geographic names to trade-dataset country names. Several
// geographic aliases may map to the same trade name. A Resolver is immutable
// after construction.
type Resolver struct {
	table map[string]string
}

// NewResolver copies table into a new Resolver.
func NewResolver(table map[string]string) *Resolver {
	copied := make(map[string]string, len(table))
	for geo, trade := range table {
		copied[geo] = trade
	}
	return &Resolver{table: copied}
}

// Resolve returns the trade-dataset name for geoName, or geoName itself when
// no mapping exists. It never fails.
func (r *Resolver) Resolve(geoName string) string {
	if r == nil {
		return geoName
	}
	if trade, ok := r.table[geoName]; ok {
		return trade
	}
	return geoName
}

// Known reports whether geoName has an explicit mapping.
func (r *Resolver) Known(geoName string) bool {
	if r == nil {
		return false
	}
	_, ok := r.table[geoName]
	return ok
}

func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.table)
}

var defaultResolver = NewResolver(countryTable)

// Default returns the resolver for the bundled world GeoJSON and the meat
// trade CSV.
func Default() *Resolver { return defaultResolver }

// Resolve uses the default table.
func Resolve(geoName string) string { return defaultResolver.Resolve(geoName) }

var countryTable = map[string]string{
	"Algeria":                          "__Algerie",
	"Germany":                          "__Allemagne",
	"Saudi Arabia":                     "__Arabie saoudite",
	"Argentina":                        "__Argentine",
	"Australia":                        "__Australie",
	"Austria":                          "__Autriche",
	"Belgium":                          "__Belgique",
	"Benin":                            "__Benin",
	"Brazil":                           "__Bresil",
	"Bulgaria":                         "__Bulgarie",
	"Canada":                           "__Canada",
	"Chile":                            "__Chili",
	"Cyprus":                           "__Chypre",
	"Congo":                            "__Congo",
	"South Korea":                      "__Coree Du Sud",
	"Korea":                            "__Coree Du Sud",
	"Croatia":                          "__Croatie",
	"Denmark":                          "__Danemark",
	"Egypt":                            "__Egypte",
	"United Arab Emirates":             "__Emirats Arabes Unis",
	"Spain":                            "__Espagne (y compris Canaries)",
	"Estonia":                          "__Estonie",
	"England":                          "__Royaume-uni",
	"Great Britain":                    "__Royaume-uni",
	"United Kingdom":                   "__Royaume-uni",
	"Finland":                          "__Finlande",
	"Gabon":                            "__Gabon",
	"Ghana":                            "__Ghana",
	"Greece":                           "__Grèce",
	"Hong Kong":                        "__Hong-kong",
	"Hungary":                          "__Hongrie",
	"Ireland":                          "__Irlande",
	"Italy":                            "__Italie",
	"Japan":                            "__Japon",
	"Kuwait":                           "__Koweit",
	"Latvia":                           "__Lettonie",
	"Lithuania":                        "__Lituanie",
	"Luxembourg":                       "__Luxembourg",
	"Malta":                            "__Malte",
	"Morocco":                          "__Maroc",
	"New Zealand":                      "__Nouvelle-zelande",
	"Oman":                             "__Oman",
	"Netherlands":                      "__Pays-Bas",
	"Philippines":                      "__Philippines",
	"Poland":                           "__Pologne",
	"Portugal":                         "__Portugal",
	"Qatar":                            "__Qatar",
	"Democratic Republic of the Congo": "__Republique Democratique Du Congo",
	"Dem. Rep. Congo":                  "__Republique Democratique Du Congo",
	"China":                            "__Republique Populaire De Chine",
	"Romania":                          "__Roumanie",
	"Russia":                           "__Russie",
	"Czech Republic":                   "__République tchèque",
	"Czechia":                          "__République tchèque",
	"Singapore":                        "__Singapour",
	"Slovakia":                         "__Slovaquie",
	"Slovenia":                         "__Slovénie",
	"Switzerland":                      "__Suisse",
	"Sweden":                           "__Suède",
	"Thailand":                         "__Thailande",
	"Togo":                             "__Togo",
	"Ukraine":                          "__Ukraine",
	"Uruguay":                          "__Uruguay",
	"Vietnam":                          "__Vietnam",
	"Yemen":                            "__Yemen",
	"United States of America":         "__Etats-Unis",
	"United States":                    "__Etats-Unis",
	"USA":                              "__Etats-Unis",
	"France":                           "France",
}
