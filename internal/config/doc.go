// Package config provides engine configuration.
//
// Page-wide defaults live in swapgrid.json; each element overrides them with
// plain data attributes.
//
// # Configuration File Structure
//
//	{
//	  "telemetry": { "endpoint": "https://collector.example.com/beacons" },
//	  "cache":     { "defaultTtlMs": 30000, "maxEntries": 200 },
//	  "debounce":  { "delayMs": 300 },
//	  "virtual":   { "minItems": 60, "rowHeight": 200, "overscan": 2 },
//	  "prefetch":  { "ratePerSecond": 5, "burst": 10 },
//	  "toggle":    { "url": "/api/toggle", "summaryTarget": "#list-summary" },
//	  "server":    { "addr": ":8080" }
//	}
//
// # Element Attributes
//
//	data-virtual="local|page"  data-virtual-min  data-virtual-row-height
//	data-virtual-columns  data-virtual-max-height  data-virtual-overflow
//	data-virtual-overscan
//	data-cache  data-cache-key  data-cache-ttl (ms)
//	data-debounce (ms)  data-debounce-on  data-debounce-group
//	data-debounce-flush="blur"
//	data-prefetch (URL)  data-prefetch-key  data-prefetch-ttl (ms)
//
// Missing attributes fall back to the file's defaults.
package config
