package registry

import "github.com/dronewatch/dronewatch/internal/models"

// seedSources is the static source catalog. Trust weights follow spec.md §3:
// 4 official, 3 verified media, 2 media, 1 social/unknown. Feed URLs and
// homepages are illustrative of the shape DroneWatch expects, not live
// endpoints.
var seedSources = []models.Source{
	{
		Key: "dk-politi-nordjylland", Name: "Nordjyllands Politi",
		Domain: "politi.dk", Type: models.SourceTypePolice, TrustWeight: models.TrustOfficial,
		Country: "DK", IsActive: true,
		HomepageURL: "https://politi.dk/nordjyllands-politi",
		FeedURL:     "https://politi.dk/nordjyllands-politi/nyhedsliste/rss",
		Language:    "da",
		KeywordHints: []string{"drone", "droner", "uav"},
	},
	{
		Key: "dk-naviair-notam", Name: "Naviair NOTAM",
		Domain: "naviair.dk", Type: models.SourceTypeNOTAM, TrustWeight: models.TrustOfficial,
		Country: "DK", IsActive: true,
		HomepageURL: "https://www.naviair.dk",
		FeedURL:     "https://www.naviair.dk/notam/feed",
		Language:    "en",
		KeywordHints: []string{"uas", "drone", "notam"},
	},
	{
		Key: "dk-dr-nyheder", Name: "DR Nyheder",
		Domain: "dr.dk", Type: models.SourceTypeMedia, TrustWeight: models.TrustVerifiedMedia,
		Country: "DK", IsActive: true,
		HomepageURL: "https://www.dr.dk",
		FeedURL:     "https://www.dr.dk/nyheder/service/feeds/allenyheder",
		Language:    "da",
		KeywordHints: []string{"drone", "droner"},
	},
	{
		Key: "no-politiet-oslo", Name: "Oslo politidistrikt",
		Domain: "politiet.no", Type: models.SourceTypePolice, TrustWeight: models.TrustOfficial,
		Country: "NO", IsActive: true,
		HomepageURL: "https://www.politiet.no/oslo",
		FeedURL:     "https://www.politiet.no/aktuelt-tall-og-fakta/rss",
		Language:    "no",
		KeywordHints: []string{"drone"},
	},
	{
		Key: "de-bundespolizei", Name: "Bundespolizei Presse",
		Domain: "bundespolizei.de", Type: models.SourceTypePolice, TrustWeight: models.TrustOfficial,
		Country: "DE", IsActive: true,
		HomepageURL: "https://www.bundespolizei.de",
		FeedURL:     "https://www.bundespolizei.de/Web/DE/presse/presse_node_rss.xml",
		Language:    "de",
		KeywordHints: []string{"drohne", "drohnen"},
	},
	{
		Key: "nl-nos-nieuws", Name: "NOS Nieuws",
		Domain: "nos.nl", Type: models.SourceTypeMedia, TrustWeight: models.TrustMedia,
		Country: "NL", IsActive: true,
		HomepageURL: "https://nos.nl",
		FeedURL:     "https://feeds.nos.nl/nosnieuwsalgemeen",
		Language:    "nl",
		KeywordHints: []string{"drone", "drones"},
	},
	{
		Key: "eu-osint-watch", Name: "EU OSINT Watch (social mirror)",
		Domain: "osintwatch.example-mirror.net", Type: models.SourceTypeSocial, TrustWeight: models.TrustSocialUnknown,
		Country: "XX", IsActive: true,
		HomepageURL: "https://osintwatch.example-mirror.net",
		FeedURL:     "https://osintwatch.example-mirror.net/rss/drones",
		Language:    "en",
		KeywordHints: []string{"drone", "uav", "uas"},
	},
	{
		Key: "se-polisen", Name: "Polisen Sverige",
		Domain: "polisen.se", Type: models.SourceTypePolice, TrustWeight: models.TrustOfficial,
		Country: "SE", IsActive: true,
		HomepageURL: "https://polisen.se",
		FeedURL:     "https://polisen.se/aktuellt/rss",
		Language:    "sv",
		KeywordHints: []string{"drönare", "drone"},
	},
}

// seedGazetteer is the curated set of geographic anchors used by the
// Geocoder. Specificity: airport=3, harbor/military/powerplant=3, city=2,
// region=1. Coordinates are approximate but within the European bounding
// box (35–71°N, −10–31°E) required by spec.md §3.
var seedGazetteer = []models.GazetteerEntry{
	{Name: "Aalborg Lufthavn", Aliases: []string{"Aalborg Airport", "AAL"}, Lat: 57.0928, Lon: 9.8492, AssetType: models.AssetAirport, Country: "DK", Specificity: 3},
	{Name: "Kastrup Lufthavn", Aliases: []string{"Copenhagen Airport", "Københavns Lufthavn", "CPH"}, Lat: 55.6180, Lon: 12.6476, AssetType: models.AssetAirport, Country: "DK", Specificity: 3},
	{Name: "Billund Lufthavn", Aliases: []string{"Billund Airport", "BLL"}, Lat: 55.7403, Lon: 9.1518, AssetType: models.AssetAirport, Country: "DK", Specificity: 3},
	{Name: "Oslo Lufthavn Gardermoen", Aliases: []string{"Oslo Airport", "OSL"}, Lat: 60.1975, Lon: 11.1004, AssetType: models.AssetAirport, Country: "NO", Specificity: 3},
	{Name: "Frankfurt Flughafen", Aliases: []string{"Frankfurt Airport", "FRA"}, Lat: 50.0379, Lon: 8.5622, AssetType: models.AssetAirport, Country: "DE", Specificity: 3},
	{Name: "Schiphol Airport", Aliases: []string{"Amsterdam Schiphol", "AMS"}, Lat: 52.3105, Lon: 4.7683, AssetType: models.AssetAirport, Country: "NL", Specificity: 3},
	{Name: "Esbjerg Havn", Aliases: []string{"Port of Esbjerg"}, Lat: 55.4650, Lon: 8.4460, AssetType: models.AssetHarbor, Country: "DK", Specificity: 3},
	{Name: "Rotterdam Havn", Aliases: []string{"Port of Rotterdam"}, Lat: 51.9496, Lon: 4.1453, AssetType: models.AssetHarbor, Country: "NL", Specificity: 3},
	{Name: "Karup Flyvestation", Aliases: []string{"Karup Air Base"}, Lat: 56.2975, Lon: 9.1246, AssetType: models.AssetMilitary, Country: "DK", Specificity: 3},
	{Name: "Ørland Flystasjon", Aliases: []string{"Orland Air Station"}, Lat: 63.6989, Lon: 9.6039, AssetType: models.AssetMilitary, Country: "NO", Specificity: 3},
	{Name: "Ringhals Kärnkraftverk", Aliases: []string{"Ringhals Nuclear Power Plant"}, Lat: 57.2581, Lon: 12.1109, AssetType: models.AssetPowerplant, Country: "SE", Specificity: 3},
	{Name: "Barsebäck Kraftverk", Aliases: []string{"Barseback Power Plant"}, Lat: 55.7658, Lon: 12.8999, AssetType: models.AssetPowerplant, Country: "SE", Specificity: 3},
	{Name: "Great Belt Bridge", Aliases: []string{"Storebæltsbroen"}, Lat: 55.3364, Lon: 11.0411, AssetType: models.AssetBridge, Country: "DK", Specificity: 3},
	{Name: "Aalborg", Aliases: nil, Lat: 57.0488, Lon: 9.9217, AssetType: models.AssetOther, Country: "DK", Specificity: 2},
	{Name: "Copenhagen", Aliases: []string{"København"}, Lat: 55.6761, Lon: 12.5683, AssetType: models.AssetOther, Country: "DK", Specificity: 2},
	{Name: "Oslo", Aliases: nil, Lat: 59.9139, Lon: 10.7522, AssetType: models.AssetOther, Country: "NO", Specificity: 2},
	{Name: "Hamburg", Aliases: nil, Lat: 53.5511, Lon: 9.9937, AssetType: models.AssetOther, Country: "DE", Specificity: 2},
	{Name: "Amsterdam", Aliases: nil, Lat: 52.3676, Lon: 4.9041, AssetType: models.AssetOther, Country: "NL", Specificity: 2},
	{Name: "Stockholm", Aliases: nil, Lat: 59.3293, Lon: 18.0686, AssetType: models.AssetOther, Country: "SE", Specificity: 2},
}
