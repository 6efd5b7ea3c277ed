package main

// listingURLs are the ads fetched by a sequential run.
var listingURLs = []string{
	"https://www.pazar3.mk/ad/6308847",
	"https://www.pazar3.mk/ad/6195008",
	"https://www.pazar3.mk/ad/6346988",
	"https://www.pazar3.mk/ad/6346934",
	"https://www.pazar3.mk/ad/6346905",
	"https://www.pazar3.mk/ad/6333151",
	"https://www.pazar3.mk/ad/6308268",
	"https://www.pazar3.mk/ad/6346596",
	"https://www.pazar3.mk/ad/6346515",
	"https://www.pazar3.mk/ad/6346520",
	"https://www.pazar3.mk/ad/6346616",
	"https://www.pazar3.mk/ad/6346665",
	"https://www.pazar3.mk/ad/6346619",
	"https://www.pazar3.mk/ad/5574587",
	"https://www.pazar3.mk/ad/6346196",
	"https://www.pazar3.mk/ad/6138490",
	"https://www.pazar3.mk/ad/6346034",
	"https://www.pazar3.mk/ad/6161569",
	"https://www.pazar3.mk/ad/6333696",
	"https://www.pazar3.mk/ad/6228159",
	"https://www.pazar3.mk/ad/6307394",
	"https://www.pazar3.mk/ad/6332375",
	"https://www.pazar3.mk/ad/4752966",
	"https://www.pazar3.mk/ad/6308328",
	"https://www.pazar3.mk/ad/6307001",
	"https://www.pazar3.mk/ad/6310605",
	"https://www.pazar3.mk/ad/4738834",
	"https://www.pazar3.mk/ad/4759540",
	"https://www.pazar3.mk/ad/6334026",
	"https://www.pazar3.mk/ad/6205280",
	"https://www.pazar3.mk/ad/6333094",
	"https://www.pazar3.mk/ad/6332831",
	"https://www.pazar3.mk/ad/6333091",
	"https://www.pazar3.mk/ad/6333005",
	"https://www.pazar3.mk/ad/6172718",
	"https://www.pazar3.mk/ad/6332468",
	"https://www.pazar3.mk/ad/6321765",
	"https://www.pazar3.mk/ad/6321662",
	"https://www.pazar3.mk/ad/6309840",
	"https://www.pazar3.mk/ad/6321764",
	"https://www.pazar3.mk/ad/6321736",
	"https://www.pazar3.mk/ad/6111914",
	"https://www.pazar3.mk/ad/5836982",
	"https://www.pazar3.mk/ad/5226748",
	"https://www.pazar3.mk/ad/6310718",
	"https://www.pazar3.mk/ad/6310671",
	"https://www.pazar3.mk/ad/6228315",
}
