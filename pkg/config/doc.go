/*
Package config loads the gesto client configuration.

	            +-------------+
	            |   Config    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Picks a parser by file extension and decodes the file strictly
- Validates values and fills in the defaults
- Hands typed options to the sync engine, the monitor and the commit policy
- Watches the file and reloads it on change

📝 Example (YAML):

	server_url: http://192.168.1.20:3000
	credentials:
	  username: bodega
	  password: secret
	session:
	  backend: sqlite
	poll_interval: 5s
	sync_debounce: 500ms
	max_commit_attempts: 3

The HCL form reads the environment through env:

	server_url = "http://192.168.1.20:3000"
	credentials {
	  username = "bodega"
	  password = env.GESTO_PASSWORD
	}

⚠️ Precedence:
A SERVER_URL saved in the session store overrides server_url on every call.
*/
package config
