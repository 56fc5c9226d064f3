package util

const CONFIG_FILE = "config.yml"
const DEFAULT_LOGFILE = "Logs.log"
const DEFAULT_DB_SOLUTIONS = "Solutions"
const DEFAULT_DB_SERVER_SOLUTIONS = "localhost"
const DEFAULT_HTTP_PORT = "8083"

//Solution units
const UNITS_VMS = "vms"
