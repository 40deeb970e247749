package chemjson

//Package chemjson implements the serialization and unserialization of
//the data exchanged by the restraint interpreter with other programs:
//streams of restraint entities (JSON lines or YAML), the hypotheses
//for re-parsing a file, and the report of a pass with its rows and
//diagnostics. The report is meant to be collected by an external
//program, for instance, via UNIX pipes.
