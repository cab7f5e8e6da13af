/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
package lifecycle keeps Chef server registrations and the instance metadata
table in sync with the instances of AWS Auto Scaling groups

Design
------

  +----------------------+   launch/terminate    +-------------+
  |  Auto Scaling Group  +---------------------->+  SNS topic  |
  +----------------------+    notifications      +------+------+
                                                        |
                                 +----------------------+--------------------+
                                 |                                           |
                          Lambda invocation                        SQS subscription
                                 |                                           |
                       +---------v---------+                       +---------v--------+
                       |  Handler          |                       |  Poller          |
                       |  .HandleEvent     |                       |  .Run            |
                       +---------+---------+                       +---------+--------+
                                 |          one goroutine per record         |
                                 +--------------------+----------------------+
                                                      |
                                            Handler.HandleMessage
                                                      |
                          +---------------------------+--------------------------+
                          |                                                      |
                  EC2_INSTANCE_LAUNCH                                  EC2_INSTANCE_TERMINATE
                          |                                                      |
          1. POST /clients (Chef server)                        1. DELETE /nodes/<node> (Chef server)
          2. PutItem <instance> (DynamoDB)                      2. DeleteItem <instance> (DynamoDB)

* The node name is <AutoScalingGroupName>-<EC2InstanceId> on both paths.
* Steps of a single record run in order and a failed step stops the chain.
  Nothing is retried: the failure is returned to the caller, and Lambda or the
  SQS redrive policy decide what happens next.
* Any other event type is logged and ignored.

*/
package lifecycle
