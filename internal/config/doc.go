// Package config provides configuration loading for the route host.
//
// Configuration is read from medapi.json (or medapi.yaml) at the project
// root, then from an optional .env file, then from MEDAPI_* environment
// variables. Every field has a default, so a project without a config file
// runs as-is.
//
// # Configuration File Structure
//
//	{
//	  "env": "production",
//	  "server": {
//	    "addr": ":8080",
//	    "host": "chi",
//	    "readTimeout": "15s",
//	    "trustedProxies": ["10.0.0.0/8"]
//	  },
//	  "routes": {
//	    "dir": "app/routes",
//	    "prefix": "/api",
//	    "rawBodyPaths": ["/api/webhooks/*"]
//	  },
//	  "multipart": {
//	    "maxFileBytes": 10485760,
//	    "maxRequestBytes": 33554432
//	  },
//	  "uploads": {"store": "s3", "bucket": "booking-attachments"},
//	  "log": {"level": "info", "format": "json"},
//	  "metrics": {"enabled": true, "path": "/metrics"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
