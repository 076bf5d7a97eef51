package rss

import "strings"

// sourceNames maps feed URL substrings to publisher names, consulted in
// order, first match wins. Data-driven so new publishers are one line.
var sourceNames = []struct {
	pattern string
	label   string
}{
	// Broadcast trade press
	{"newscaststudio", "NewscastStudio"},
	{"tvtechnology", "TV Technology"},
	{"tvnewscheck", "TVNewsCheck"},
	{"broadcastbeat", "BroadcastBeat"},
	{"broadcastingcable", "Broadcasting & Cable"},
	{"svgeurope", "SVG Europe"},
	{"sportsvideo", "Sports Video Group"},
	{"tvbeurope", "TVBEurope"},
	{"digitaltvnews", "Digital TV News"},
	{"thebroadcastbridge", "The Broadcast Bridge"},
	{"broadcastbridge", "The Broadcast Bridge"},
	{"ibc.org", "IBC"},
	// Playout and broadcast vendors
	{"rossvideo", "Ross Video"},
	{"harmonicinc", "Harmonic"},
	{"evertz", "Evertz"},
	{"grassvalley", "Grass Valley"},
	{"pebble.tv", "Pebble"},
	{"playboxtechnology", "PlayBox Technology"},
	// Graphics
	{"vizrt", "Vizrt"},
	{"motionographer", "Motionographer"},
	{"cgchannel", "CG Channel"},
	{"realtimevfx", "RealtimeVFX"},
	// Cloud and delivery
	{"aws.amazon", "AWS Media"},
	{"azure.microsoft", "Azure"},
	{"cloud.google", "Google Cloud Media"},
	{"cloudflare", "Cloudflare"},
	{"cloudinary", "Cloudinary"},
	{"frame.io", "Frame.io"},
	{"akamai", "Akamai"},
	{"fastly", "Fastly"},
	// Streaming vendors and press
	{"streamingmediablog", "Streaming Media Blog"},
	{"streaminglearningcenter", "Streaming Learning Center"},
	{"streamingmedia", "Streaming Media"},
	{"infotoday", "Streaming Media"},
	{"haivision", "Haivision"},
	{"wowza", "Wowza"},
	{"mux.com", "Mux"},
	{"jwplayer", "JW Player"},
	{"limelight", "Limelight"},
	{"bitmovin", "Bitmovin"},
	{"brightcove", "Brightcove"},
	{"kaltura", "Kaltura"},
	{"telestream", "Telestream"},
	{"dacast", "Dacast"},
	{"onthefly.stream", "OnTheFly"},
	{"yololiv", "YoloLiv"},
	{"ottverse", "OTTVerse"},
	// Audio
	{"redtech", "RedTech"},
	{"radioworld", "Radio World"},
	{"waves.com", "Waves Audio"},
	{"production-expert", "Production Expert"},
	{"audinate", "Audinate"},
	{"merging.com", "Merging"},
	{"prosoundnetwork", "Pro Sound Network"},
	// Post production
	{"provideocoalition", "Pro Video Coalition"},
	{"newsshooter", "Newsshooter"},
	{"fstoppers", "Fstoppers"},
	{"cinema5d", "Cinema5D"},
	{"postperspective", "Post Perspective"},
	{"studiodaily", "Studio Daily"},
	{"filmmakermagazine", "Filmmaker Magazine"},
	{"premiumbeat", "PremiumBeat"},
	{"videomaker", "Videomaker"},
	{"avid.com", "Avid"},
	{"blog.avid", "Avid"},
	// Storage and MAM
	{"studionetworksolutions", "Studio Network Solutions"},
	{"signiant", "Signiant"},
}

// SourceName derives a human-readable publisher name from a feed URL.
func SourceName(feedURL string) string {
	lower := strings.ToLower(feedURL)
	for _, e := range sourceNames {
		if strings.Contains(lower, strings.ToLower(e.pattern)) {
			return e.label
		}
	}
	return "Technology News"
}
