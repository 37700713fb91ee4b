package config

// Schema is the JSON schema for validating configuration files. YAML and TOML
// files are converted to JSON before validation.
const Schema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "definitions": {
        "gfs": {
            "type": "object",
            "properties": {
                "enabled": {
                    "type": "boolean"
                },
                "daily": {
                    "type": "integer",
                    "minimum": 0,
                    "description": "Number of newest backups to keep"
                },
                "weekly": {
                    "type": "integer",
                    "minimum": 0,
                    "description": "Number of ISO weeks to keep one backup of"
                },
                "monthly": {
                    "type": "integer",
                    "minimum": 0,
                    "description": "Number of calendar months to keep one backup of"
                },
                "min_keep": {
                    "type": "integer",
                    "minimum": 0,
                    "description": "Never leave fewer backups than this"
                }
            },
            "additionalProperties": false
        }
    },
    "type": "object",
    "properties": {
        "backup_dir": {
            "type": "string",
            "description": "Directory where backups are stored when no destination is configured"
        },
        "manifest_dir": {
            "type": "string",
            "description": "Directory holding one sub-directory with a manifest.json per backup"
        },
        "max_concurrent": {
            "type": "integer",
            "minimum": 1
        },
        "log_level": {
            "type": "string",
            "enum": ["debug", "info", "warn", "error"]
        },
        "log_format": {
            "type": "string",
            "enum": ["json", "console"]
        },
        "schedule": {
            "type": "string"
        },
        "gfs": {
            "$ref": "#/definitions/gfs"
        },
        "legacy": {
            "type": "object",
            "properties": {
                "max_age_days": {
                    "type": "integer",
                    "minimum": 0
                }
            }
        },
        "storage": {
            "type": "object",
            "properties": {
                "destinations": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {
                                "type": "string",
                                "pattern": "^[a-zA-Z0-9_-]+$"
                            },
                            "type": {
                                "type": "string",
                                "enum": ["local", "s3", "backblaze", "ssh"]
                            },
                            "enabled": {
                                "type": "boolean"
                            },
                            "base_dir": {
                                "type": "string"
                            },
                            "options": {
                                "type": "object"
                            }
                        },
                        "required": ["name", "type", "enabled"]
                    }
                }
            }
        },
        "databases": {
            "type": "array",
            "items": {
                "type": "object",
                "properties": {
                    "name": {
                        "type": "string",
                        "pattern": "^[a-zA-Z0-9_-]+$"
                    },
                    "destinations": {
                        "type": "array",
                        "items": {
                            "type": "string"
                        }
                    },
                    "gfs": {
                        "$ref": "#/definitions/gfs"
                    }
                },
                "required": ["name"]
            }
        }
    },
    "required": ["databases"]
}`
